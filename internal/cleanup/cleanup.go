// Package cleanup runs process-exit hooks such as closing the log file and
// flushing the metrics textfile.
package cleanup

import (
	"errors"
	"fmt"
	"sync"
)

var (
	mu    sync.Mutex
	hooks []hook
)

type hook struct {
	name string
	fn   func() error
}

// Register adds a named hook. Hooks run in LIFO order.
func Register(name string, fn func() error) {
	if fn == nil {
		return
	}
	mu.Lock()
	hooks = append(hooks, hook{name: name, fn: fn})
	mu.Unlock()
}

// RunAll executes and clears every registered hook. All hooks run even when
// one fails; the failures are joined.
func RunAll() error {
	mu.Lock()
	local := hooks
	hooks = nil
	mu.Unlock()

	var errs []error
	for i := len(local) - 1; i >= 0; i-- {
		if err := local[i].fn(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", local[i].name, err))
		}
	}
	return errors.Join(errs...)
}
