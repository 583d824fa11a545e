package wdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, d *Dispatcher, input string) string {
	t.Helper()
	status, resp := d.Parse(context.Background(), input)
	require.Equal(t, StatusOK, status, "input %q got %q", input, resp)
	return resp
}

func TestHandlers_OSInfo(t *testing.T) {
	st := newFakeStore()
	d, _ := newTestDispatcher(t, map[string]*fakeStore{"003": st})

	// Unset OS info reads back as a bare ok.
	assert.Equal(t, "ok", parseOK(t, d, "agent 003 getos"))

	// The remaining tokens are stored re-joined with single spaces.
	assert.Equal(t, "ok", parseOK(t, d, "agent 003 setos Ubuntu 22.04 LTS"))
	assert.Equal(t, "ok Ubuntu 22.04 LTS", parseOK(t, d, "agent 003 getos"))

	// Interior whitespace runs collapse during tokenization.
	parseOK(t, d, "agent 003 setos Ubuntu  22.04")
	assert.Equal(t, "ok Ubuntu 22.04", parseOK(t, d, "agent 003 getos"))
}

func TestHandlers_Labels(t *testing.T) {
	st := newFakeStore()
	d, _ := newTestDispatcher(t, map[string]*fakeStore{"003": st})
	ctx := context.Background()

	assert.Equal(t, "ok", parseOK(t, d, "agent 003 getlabels"))

	parseOK(t, d, "agent 003 setlabel env prod")
	parseOK(t, d, "agent 003 setlabel dc eu-west")
	assert.Equal(t, "ok dc:eu-west,env:prod", parseOK(t, d, "agent 003 getlabels"))

	// Re-setting a key overwrites.
	parseOK(t, d, "agent 003 setlabel env staging")
	assert.Equal(t, "ok dc:eu-west,env:staging", parseOK(t, d, "agent 003 getlabels"))

	parseOK(t, d, "agent 003 dellabels")
	assert.Equal(t, "ok", parseOK(t, d, "agent 003 getlabels"))

	// Separator characters in keys or values would corrupt the listing.
	res := d.dispatch(ctx, "agent 003 setlabel bad:key value")
	require.False(t, res.IsOk())
	assert.Equal(t, ErrHandlerValidation, res.Kind())

	res = d.dispatch(ctx, "agent 003 setlabel key bad,value")
	require.False(t, res.IsOk())
	assert.Equal(t, ErrHandlerValidation, res.Kind())
}

func TestHandlers_Syscheck(t *testing.T) {
	st := newFakeStore()
	d, _ := newTestDispatcher(t, map[string]*fakeStore{"003": st})
	ctx := context.Background()

	parseOK(t, d, "agent 003 syscheck save /etc/passwd abc123")
	assert.Equal(t, "ok abc123", parseOK(t, d, "agent 003 syscheck get /etc/passwd"))

	res := d.dispatch(ctx, "agent 003 syscheck get /etc/shadow")
	require.False(t, res.IsOk())
	assert.Equal(t, ErrHandlerValidation, res.Kind())

	parseOK(t, d, "agent 003 syscheck save /etc/hosts def456")
	assert.Equal(t, "ok 2", parseOK(t, d, "agent 003 syscheck clean"))
	assert.Equal(t, "ok 0", parseOK(t, d, "agent 003 syscheck clean"))
}

func TestHandlers_SyscheckSubVerbArity(t *testing.T) {
	st := newFakeStore()
	d, _ := newTestDispatcher(t, map[string]*fakeStore{"003": st})
	ctx := context.Background()

	tests := []struct {
		input string
		kind  ErrorKind
	}{
		{input: "agent 003 syscheck save /etc/passwd", kind: ErrArityMismatch},
		{input: "agent 003 syscheck get", kind: ErrArityMismatch},
		{input: "agent 003 syscheck explode", kind: ErrUnknownCommand},
	}
	for _, tt := range tests {
		res := d.dispatch(ctx, tt.input)
		require.False(t, res.IsOk(), "input %q", tt.input)
		assert.Equal(t, tt.kind, res.Kind(), "input %q", tt.input)
	}
}

func TestHandlers_SQLReadOnly(t *testing.T) {
	st := newFakeStore()
	d, _ := newTestDispatcher(t, map[string]*fakeStore{"003": st})
	ctx := context.Background()

	assert.Equal(t, "ok []", parseOK(t, d, "agent 003 sql SELECT key FROM labels"))
	assert.Equal(t, "ok []", parseOK(t, d, "agent 003 sql select 1"))
	assert.Equal(t, "ok []", parseOK(t, d, "agent 003 sql PRAGMA table_info(labels)"))

	for _, stmt := range []string{
		"DELETE FROM labels",
		"INSERT INTO labels VALUES ('a','b')",
		"UPDATE labels SET value = 'x'",
		"DROP TABLE labels",
	} {
		res := d.dispatch(ctx, "agent 003 sql "+stmt)
		require.False(t, res.IsOk(), "stmt %q", stmt)
		assert.Equal(t, ErrHandlerValidation, res.Kind(), "stmt %q", stmt)
	}
}

func TestHandlers_StorageFailureNeverSwallowed(t *testing.T) {
	st := newFakeStore()
	st.failWith = assert.AnError
	d, _ := newTestDispatcher(t, map[string]*fakeStore{"003": st})
	ctx := context.Background()

	inputs := []string{
		"agent 003 getos",
		"agent 003 setos Debian",
		"agent 003 getlabels",
		"agent 003 setlabel env prod",
		"agent 003 dellabels",
		"agent 003 syscheck save /etc/passwd abc",
		"agent 003 syscheck get /etc/passwd",
		"agent 003 syscheck clean",
		"agent 003 sql SELECT 1",
		"agent 003 vacuum",
	}
	for _, input := range inputs {
		res := d.dispatch(ctx, input)
		require.False(t, res.IsOk(), "input %q", input)
		assert.Equal(t, ErrStorageFailure, res.Kind(), "input %q", input)
	}
}
