// Package shutdown stops a command cleanly on SIGINT or SIGTERM.
//
// A long benchmark run registers cleanup hooks (flush collections to the
// store, close the store, stop the metrics listener) and then waits on the
// context returned by Context. Hooks run in reverse order of registration
// under a shared deadline.
//
//	h := shutdown.NewHandler(10 * time.Second)
//	ctx, stop := h.Context(context.Background())
//	defer stop()
//	h.OnShutdown(store.CloseContext)
//	runWorkload(ctx)
//	err := h.Shutdown()
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Signals are the signals that trigger shutdown.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// Hook is a cleanup function run during shutdown.
type Hook func(context.Context) error

// Handler runs cleanup hooks once.
type Handler struct {
	timeout time.Duration
	hooks   []Hook
	mu      sync.Mutex
	once    sync.Once
	err     error
	done    chan struct{}
}

// NewHandler creates a handler whose hooks share a deadline of timeout.
// A non-positive timeout means no deadline.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a hook.
func (h *Handler) OnShutdown(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Context returns a context canceled when one of Signals arrives or parent
// is done. Call stop to release the signal registration.
func (h *Handler) Context(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}

// Wait blocks until a signal arrives and then runs the hooks.
func (h *Handler) Wait() error {
	ctx, stop := h.Context(context.Background())
	defer stop()
	<-ctx.Done()
	return h.Shutdown()
}

// Shutdown runs the hooks in reverse order of registration. Later calls
// return the result of the first one. The returned error joins every hook
// failure.
func (h *Handler) Shutdown() error {
	h.once.Do(func() {
		ctx := context.Background()
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}

		h.mu.Lock()
		hooks := make([]Hook, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		h.err = errors.Join(errs...)
		close(h.done)
	})
	return h.err
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
