package watches

import (
	"context"
	"time"

	"github.com/reusee/wiggler/cmds"
	"github.com/reusee/wiggler/logs"
)

// Debounce collects bursts of events into one callback.
type Debounce time.Duration

const defaultDebounce = 50 * time.Millisecond

var debounceFlag = cmds.Var[time.Duration]("-debounce", "quiet period before a rebuild")

func (Module) Debounce() Debounce {
	if *debounceFlag > 0 {
		return Debounce(*debounceFlag)
	}
	return Debounce(defaultDebounce)
}

// Watch calls fn once per burst of changes to a watched path until ctx is done.
// Errors from fn are logged and do not stop watching.
type Watch func(ctx context.Context, paths []string, fn func(ctx context.Context, path string) error) error

func (Module) Watch(
	logger logs.Logger,
	debounce Debounce,
) Watch {
	return func(ctx context.Context, paths []string, fn func(ctx context.Context, path string) error) error {
		watcher, err := NewWatcher(paths...)
		if err != nil {
			return err
		}
		defer watcher.Close()
		logger.InfoContext(ctx, "watching", "paths", paths)

		pending := make(map[string]bool)
		timer := time.NewTimer(time.Duration(debounce))
		timer.Stop()

		for {
			select {

			case <-ctx.Done():
				return nil

			case path, ok := <-watcher.Events():
				if !ok {
					return nil
				}
				pending[path] = true
				timer.Reset(time.Duration(debounce))

			case err := <-watcher.Errors():
				logger.WarnContext(ctx, "watch error", "err", err)

			case <-timer.C:
				for path := range pending {
					delete(pending, path)
					logger.InfoContext(ctx, "changed", "path", path)
					if err := fn(ctx, path); err != nil {
						logger.ErrorContext(ctx, "handle change", "path", path, "err", err)
					}
				}

			}
		}
	}
}
