package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrow2022/wazuh/internal/testutil"
	"github.com/qrow2022/wazuh/internal/wdb"
)

// newTestDispatcher wires a real dispatcher over real per-agent
// databases in a temp directory.
func newTestDispatcher(t *testing.T, agentIDs ...string) *wdb.Dispatcher {
	t.Helper()
	m := newTestManager(t)
	for _, id := range agentIDs {
		db, err := m.Create(context.Background(), id)
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}
	return wdb.NewDispatcher(wdb.DefaultRegistry(), NewResolver(m), &wdb.Options{
		Logger: testutil.NewTestLogger(t),
	})
}

func TestDispatch_EndToEnd(t *testing.T) {
	d := newTestDispatcher(t, "003")
	ctx := context.Background()

	status, resp := d.Parse(ctx, "agent 003 setos os-info-string")
	require.Equal(t, wdb.StatusOK, status, resp)

	status, resp = d.Parse(ctx, "agent 003 getos")
	assert.Equal(t, wdb.StatusOK, status)
	assert.Equal(t, "ok os-info-string", resp)

	status, resp = d.Parse(ctx, "agent 999 getos")
	assert.Equal(t, wdb.StatusError, status)
	assert.Equal(t, "err unknown entity 999", resp)

	status, resp = d.Parse(ctx, "bogus")
	assert.Equal(t, wdb.StatusError, status)
	assert.Equal(t, `err unknown command "bogus"`, resp)
}

// Interleaved writes and reads against two agents must never bleed
// across databases.
func TestDispatch_EntityIsolation(t *testing.T) {
	d := newTestDispatcher(t, "003", "004")
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		status, resp := d.Parse(ctx, fmt.Sprintf("agent 003 setlabel seq a%d", i))
		require.Equal(t, wdb.StatusOK, status, resp)
		status, resp = d.Parse(ctx, fmt.Sprintf("agent 004 setlabel seq b%d", i))
		require.Equal(t, wdb.StatusOK, status, resp)

		_, resp = d.Parse(ctx, "agent 003 getlabels")
		assert.Equal(t, fmt.Sprintf("ok seq:a%d", i), resp)
		_, resp = d.Parse(ctx, "agent 004 getlabels")
		assert.Equal(t, fmt.Sprintf("ok seq:b%d", i), resp)
	}

	d.Parse(ctx, "agent 003 syscheck save /etc/passwd only-on-003")
	_, resp := d.Parse(ctx, "agent 004 syscheck get /etc/passwd")
	assert.Equal(t, "err no syscheck entry for \"/etc/passwd\"", resp)

	// A read-only query on 004 sees none of 003's rows.
	_, resp = d.Parse(ctx, "agent 004 sql SELECT file FROM syscheck_entries")
	assert.Equal(t, "ok []", resp)
}

// Concurrent requests for different agents share one dispatcher safely.
func TestDispatch_ConcurrentAgents(t *testing.T) {
	d := newTestDispatcher(t, "003", "004", "005")
	ctx := context.Background()

	done := make(chan error, 3)
	for i, id := range []string{"003", "004", "005"} {
		go func(id string, tag int) {
			for j := 0; j < 20; j++ {
				status, resp := d.Parse(ctx, fmt.Sprintf("agent %s setos os-%d-%d", id, tag, j))
				if status != wdb.StatusOK {
					done <- fmt.Errorf("agent %s: %s", id, resp)
					return
				}
			}
			done <- nil
		}(id, i)
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, <-done)
	}

	for i, id := range []string{"003", "004", "005"} {
		_, resp := d.Parse(ctx, "agent "+id+" getos")
		assert.Equal(t, fmt.Sprintf("ok os-%d-19", i), resp)
	}
}
