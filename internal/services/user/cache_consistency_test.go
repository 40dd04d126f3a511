package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-catalog/internal/cache"
	"github.com/magabrotheeeer/subscription-catalog/internal/config"
	"github.com/magabrotheeeer/subscription-catalog/internal/events"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
	"github.com/magabrotheeeer/subscription-catalog/internal/storage"
)

// memoryRepo хранит пользователей в памяти. Первое чтение пользователя,
// если задан hold, останавливается после снимка до закрытия release.
type memoryRepo struct {
	RepoMock

	mu      sync.Mutex
	users   map[int64]models.User
	hold    bool
	taken   chan struct{}
	release chan struct{}
}

func (r *memoryRepo) GetUser(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	u, ok := r.users[id]
	hold := r.hold
	r.hold = false
	r.mu.Unlock()

	if hold {
		close(r.taken)
		<-r.release
	}
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (r *memoryRepo) DeleteUser(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return 0, storage.ErrNotFound
	}
	delete(r.users, id)
	return 0, nil
}

func TestManager_GetByID_DeleteDuringRead(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := cache.InitServer(ctx, config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	repo := &memoryRepo{
		users:   map[int64]models.User{7: {ID: 7, Username: "alice", Email: "alice@example.com"}},
		hold:    true,
		taken:   make(chan struct{}),
		release: make(chan struct{}),
	}
	m := New(repo, c, events.Noop{}, time.Hour, newNoopLogger())

	inFlight := make(chan error, 1)
	go func() {
		_, err := m.GetByID(ctx, 7)
		inFlight <- err
	}()

	<-repo.taken
	require.NoError(t, m.Delete(ctx, 7))
	close(repo.release)
	require.NoError(t, <-inFlight)

	_, err = m.GetByID(ctx, 7)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
