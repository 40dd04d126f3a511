package subscription_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-catalog/internal/events"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-catalog/internal/lib/logger"
	"github.com/magabrotheeeer/subscription-catalog/internal/models"
	"github.com/magabrotheeeer/subscription-catalog/internal/services/subscription"
	"github.com/magabrotheeeer/subscription-catalog/internal/storage/storagetest"
)

func TestManager_Create_ConcurrentDuplicates(t *testing.T) {
	s := storagetest.New(t)
	m := subscription.New(s, nil, events.Noop{}, time.Minute, logger.NewDiscard())
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		taken     int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := m.Create(ctx, models.SubscriptionRequest{
				SubscriptionName: "spotify",
				ServiceName:      fmt.Sprintf("Spotify %d", i),
				ServiceURL:       "https://spotify.com",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperr.ErrAlreadyExists):
				assert.EqualError(t, err, `subscription with name "spotify" already exists`)
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, taken)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
}
