package lock

import (
	"context"
	"sync"
	"time"
)

var (
	lockMap sync.Map
)

const retryInterval = 50 * time.Millisecond

// WithDelay выполняет safeCode под блокировкой key в пределах процесса.
// Если блокировку не удалось получить за wait, safeCode не выполняется и success=false
func WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	isTimeout := time.After(wait)
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		if _, loaded := lockMap.LoadOrStore(key, true); !loaded {
			break
		}
		select {
		case <-isTimeout:
			return false, nil
		case <-ctx.Done():
			return false, nil
		case <-ticker.C:
		}
	}
	defer lockMap.Delete(key)
	return true, safeCode()
}
