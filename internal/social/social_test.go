package social

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"socialnet/internal/model"
)

// recordingLog keeps every activity for assertions.
type recordingLog struct {
	mu      sync.Mutex
	entries []model.Activity
}

func (r *recordingLog) Record(a model.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
}

func (r *recordingLog) messages(kind string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, a := range r.entries {
		if a.Kind == kind {
			out = append(out, a.Message)
		}
	}
	return out
}

func newTestNetwork(t *testing.T) (*Directory, *recordingLog) {
	t.Helper()
	rec := &recordingLog{}
	return NewDirectory("Twitter", rec), rec
}

func mustRegister(t *testing.T, d *Directory, name, password string) *User {
	t.Helper()
	u, err := d.Register(context.Background(), name, password)
	require.NoError(t, err)
	return u
}
