package parallel

import (
	"context"
	"sync/atomic"

	"github.com/graph-metrics/pkg/errors"
)

// TerminationFlag is a cheap, pollable view of a context's cancellation.
// Workers check Running between nodes instead of selecting on ctx.Done().
type TerminationFlag struct {
	stopped atomic.Bool
	release func() bool
	ctx     context.Context
}

// NewTerminationFlag returns a flag that flips when ctx is done or when Stop
// is called. Close must be called to release the context hook.
func NewTerminationFlag(ctx context.Context) *TerminationFlag {
	f := &TerminationFlag{ctx: ctx}
	if ctx.Err() != nil {
		f.stopped.Store(true)
	}
	f.release = context.AfterFunc(ctx, func() {
		f.stopped.Store(true)
	})
	return f
}

// Running reports whether work may continue.
func (f *TerminationFlag) Running() bool {
	return !f.stopped.Load()
}

// Stop requests termination regardless of the context state.
func (f *TerminationFlag) Stop() {
	f.stopped.Store(true)
}

// Err returns a CANCELLED error once the flag has flipped, nil otherwise.
func (f *TerminationFlag) Err() error {
	if f.Running() {
		return nil
	}
	if cause := context.Cause(f.ctx); cause != nil {
		return errors.Wrap(errors.CodeCancelled, "computation cancelled", cause)
	}
	return errors.New(errors.CodeCancelled, "computation cancelled")
}

// Close detaches the flag from its context.
func (f *TerminationFlag) Close() {
	if f.release != nil {
		f.release()
	}
}
