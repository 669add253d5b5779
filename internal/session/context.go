package session

import (
	"context"
	"sync"
)

// callContexts hands interpreted code the context of the call in progress.
// The ctx variable is rebound to it at the start of every call, so a
// context captured during an earlier call keeps that call's cancellation.
type callContexts struct {
	mu   sync.Mutex
	base context.Context
	cur  context.Context
}

func (c *callContexts) set(ctx context.Context) {
	c.mu.Lock()
	c.cur = ctx
	c.mu.Unlock()
}

// current returns the running call's context, or the base context between
// calls.
func (c *callContexts) current() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != nil {
		return c.cur
	}
	return c.base
}
