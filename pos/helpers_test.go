package pos

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type recordingSync struct {
	mu            sync.Mutex
	salesPushes   int
	catalogPushes int
}

func (r *recordingSync) RequestSalesPush() {
	r.mu.Lock()
	r.salesPushes++
	r.mu.Unlock()
}

func (r *recordingSync) RequestCatalogPush() {
	r.mu.Lock()
	r.catalogPushes++
	r.mu.Unlock()
}

func (r *recordingSync) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.salesPushes, r.catalogPushes
}

func newTestStore() *store.Store {
	return store.New(store.NewMemoryStore(), quietLogger())
}

func newTestTerminal(t *testing.T, st *store.Store) (*Terminal, *recordingSync) {
	t.Helper()
	if st == nil {
		st = newTestStore()
	}
	term, err := NewTerminal(context.Background(), Options{
		Store:  st,
		Logger: quietLogger(),
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	rs := &recordingSync{}
	term.SetSyncRequester(rs)
	return term, rs
}
