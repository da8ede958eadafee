/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package edit

import (
	"context"
	"sync"
	"time"
)

// FrameInterval is the render tick continuous updates are coalesced to.
const FrameInterval = 16 * time.Millisecond

// Coalescer collapses rapid updates into the most recent one and applies it
// at most once per Flush. Later submissions replace the pending value, they
// never queue behind it.
type Coalescer[T any] struct {
	mu      sync.Mutex
	pending T
	has     bool
	apply   func(T)
}

// NewCoalescer returns a Coalescer that hands flushed values to apply.
func NewCoalescer[T any](apply func(T)) *Coalescer[T] {
	return &Coalescer[T]{apply: apply}
}

// Submit stores v as the pending value.
func (c *Coalescer[T]) Submit(v T) {
	c.mu.Lock()
	c.pending, c.has = v, true
	c.mu.Unlock()
}

// Pending reports whether a value is waiting for the next flush.
func (c *Coalescer[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.has
}

// Flush applies the pending value, if any, and reports whether it did.
func (c *Coalescer[T]) Flush() bool {
	c.mu.Lock()
	v, ok := c.pending, c.has
	var zero T
	c.pending, c.has = zero, false
	c.mu.Unlock()
	if ok && c.apply != nil {
		c.apply(v)
	}
	return ok
}

// Discard drops the pending value without applying it.
func (c *Coalescer[T]) Discard() {
	c.mu.Lock()
	var zero T
	c.pending, c.has = zero, false
	c.mu.Unlock()
}

// Run flushes on every tick until ctx is done. A value still pending at
// shutdown is flushed once more.
func (c *Coalescer[T]) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = FrameInterval
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Flush()
			return
		case <-t.C:
			c.Flush()
		}
	}
}
