package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	calls    []tenancy.TenantID
	started  chan tenancy.TenantID
	release  chan struct{}
	err      error
	deadline bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{started: make(chan tenancy.TenantID, 16)}
}

func (f *fakeStore) TouchActivity(ctx context.Context, id tenancy.TenantID, at time.Time) error {
	f.started <- id
	if f.release != nil {
		<-f.release
	}
	_, hasDeadline := ctx.Deadline()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	f.deadline = hasDeadline
	return f.err
}

func (f *fakeStore) recorded() []tenancy.TenantID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tenancy.TenantID(nil), f.calls...)
}

func waitStarted(t *testing.T, f *fakeStore) tenancy.TenantID {
	t.Helper()
	select {
	case id := <-f.started:
		return id
	case <-time.After(2 * time.Second):
		require.FailNow(t, "activity update not started")
		return tenancy.NilTenant
	}
}

func TestTouchUpdatesWithDeadline(t *testing.T) {
	store := newFakeStore()
	r := New(store, Options{Workers: 1, Timeout: time.Second})
	a := tenancy.NewTenantID()

	r.Touch(a)
	assert.Equal(t, a, waitStarted(t, store))
	r.Stop()
	assert.Equal(t, []tenancy.TenantID{a}, store.recorded())
	assert.True(t, store.deadline)
}

func TestTouchCoalesces(t *testing.T) {
	store := newFakeStore()
	store.release = make(chan struct{})
	r := New(store, Options{Workers: 1, QueueSize: 4})
	a, b := tenancy.NewTenantID(), tenancy.NewTenantID()

	r.Touch(a)
	waitStarted(t, store)
	r.Touch(b)
	r.Touch(b)
	r.Touch(b)
	close(store.release)
	r.Stop()

	assert.Equal(t, []tenancy.TenantID{a, b}, store.recorded())
}

func TestTouchDropsWhenFull(t *testing.T) {
	store := newFakeStore()
	store.release = make(chan struct{})
	r := New(store, Options{Workers: 1, QueueSize: 1})
	a, b, c := tenancy.NewTenantID(), tenancy.NewTenantID(), tenancy.NewTenantID()

	r.Touch(a)
	waitStarted(t, store)
	r.Touch(b)
	done := make(chan struct{})
	go func() {
		r.Touch(c)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "Touch blocked on a full queue")
	}
	close(store.release)
	r.Stop()

	assert.Equal(t, []tenancy.TenantID{a, b}, store.recorded())
}

func TestStoreErrorsAreContained(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("database is down")
	r := New(store, Options{})
	r.Touch(tenancy.NewTenantID())
	waitStarted(t, store)
	assert.NotPanics(t, r.Stop)
}

func TestTouchAfterStop(t *testing.T) {
	store := newFakeStore()
	r := New(store, Options{})
	r.Stop()
	r.Stop()
	assert.NotPanics(t, func() { r.Touch(tenancy.NewTenantID()) })
	r.Touch(tenancy.NilTenant)
	assert.Empty(t, store.recorded())
}
