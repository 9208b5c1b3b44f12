// internal/game/decision.go
package game

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// Decision names used in DecisionError and log fields.
const (
	DecisionDraw      = "draw"
	DecisionDiscard   = "discard"
	DecisionKnock     = "knock"
	DecisionGameStart = "on_game_start"
	DecisionTurnEnd   = "on_turn_end"
)

var (
	// ErrDecisionTimeout marks a decision that did not return in time.
	ErrDecisionTimeout = errors.New("decision timed out")
	// ErrDecisionPanic marks a decision that panicked.
	ErrDecisionPanic = errors.New("decision panicked")
	// ErrDecisionFailed marks a decision that returned an error.
	ErrDecisionFailed = errors.New("decision failed")
)

// DecisionError is a decision-maker fault. It matches its Kind sentinel and
// the underlying error with errors.Is.
type DecisionError struct {
	Seat     uint8
	Player   string
	Decision string
	Kind     error // ErrDecisionTimeout, ErrDecisionPanic or ErrDecisionFailed
	Err      error
}

func (e *DecisionError) Error() string {
	return fmt.Sprintf("%s (seat %d) %s: %v: %v", e.Player, e.Seat, e.Decision, e.Kind, e.Err)
}

func (e *DecisionError) Unwrap() []error { return []error{e.Kind, e.Err} }

// panicError carries a recovered panic value and stack.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string { return fmt.Sprintf("panic: %v", p.value) }

// Decide runs fn on its own goroutine and waits until it returns, panics or
// the timeout expires. A timed out goroutine is abandoned; its result is
// dropped.
func Decide[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type reply struct {
		v   T
		err error
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: &panicError{value: r, stack: debug.Stack()}}
			}
		}()
		v, err := fn(ctx)
		done <- reply{v: v, err: err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// classify maps a Decide error to its DecisionError kind.
func classify(err error) error {
	var pe *panicError
	switch {
	case errors.As(err, &pe):
		return ErrDecisionPanic
	case errors.Is(err, context.DeadlineExceeded):
		return ErrDecisionTimeout
	}
	return ErrDecisionFailed
}

// PanicStack returns the goroutine stack captured for a panicking decision,
// or nil if err is not one.
func PanicStack(err error) []byte {
	var pe *panicError
	if errors.As(err, &pe) {
		return pe.stack
	}
	return nil
}
