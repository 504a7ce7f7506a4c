package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWithDelay(t *testing.T) {
	t.Run(`code runs exclusively`, func(t *testing.T) {
		var active, maxActive int32
		wg := sync.WaitGroup{}
		for n := 0; n < 5; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := WithDelay(context.Background(), "session-1", 5*time.Second, func() error {
					current := atomic.AddInt32(&active, 1)
					if current > atomic.LoadInt32(&maxActive) {
						atomic.StoreInt32(&maxActive, current)
					}
					time.Sleep(5 * time.Millisecond)
					atomic.AddInt32(&active, -1)
					return nil
				})
				require.True(t, ok)
				require.Nil(t, err)
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), maxActive)
	})

	t.Run(`timeout while locked`, func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		go WithDelay(context.Background(), "session-2", time.Second, func() error {
			close(started)
			<-release
			return nil
		})
		<-started
		ok, err := WithDelay(context.Background(), "session-2", 10*time.Millisecond, func() error {
			return errors.New("must not run")
		})
		close(release)
		require.False(t, ok)
		require.Nil(t, err)
	})
}
