package wdb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAgentID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr string
	}{
		{name: "zero padded", id: "003"},
		{name: "manager id", id: "000"},
		{name: "max length", id: strings.Repeat("9", 8)},
		{name: "empty", id: "", wantErr: "empty"},
		{name: "too long", id: strings.Repeat("9", 9), wantErr: "exceeds"},
		{name: "letters", id: "abc", wantErr: "non-digit"},
		{name: "mixed", id: "00x", wantErr: "non-digit"},
		{name: "negative", id: "-3", wantErr: "non-digit"},
		{name: "whitespace", id: "0 3", wantErr: "non-digit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAgentID(tt.id)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
