/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrFallback tells the caller to use the pure implementation instead.
var ErrFallback = errors.New("geom: falling back to pure calculation")

// Accelerator is an optional provider of bulk geometry routines. Every method
// must agree numerically with the pure function of the same name.
type Accelerator interface {
	Name() string
	PolylineLength(ctx context.Context, points []float64) (float64, error)
	DistanceToCircle(ctx context.Context, p, c Pt, r float64) (float64, error)
	RayCircleIntersect(ctx context.Context, origin, dir, c Pt, r float64) (float64, bool, error)
}

// Loader produces the accelerator. It runs lazily on first bulk use.
type Loader func(ctx context.Context) (Accelerator, error)

// retryAfter spaces out load attempts after a failure.
var retryAfter = 5 * time.Second

var (
	accelMu    sync.Mutex
	accelLoad  Loader
	accelReady Accelerator
	accelFail  time.Time
)

// RegisterAccelerator installs a loader and drops any previously loaded accelerator.
// A nil loader disables acceleration.
func RegisterAccelerator(l Loader) {
	accelMu.Lock()
	accelLoad, accelReady, accelFail = l, nil, time.Time{}
	accelMu.Unlock()
}

// LoadedAccelerator returns the accelerator if it has been loaded, or nil.
func LoadedAccelerator() Accelerator {
	accelMu.Lock()
	defer accelMu.Unlock()
	return accelReady
}

func accelerator(ctx context.Context) Accelerator {
	accelMu.Lock()
	defer accelMu.Unlock()
	if accelReady != nil || accelLoad == nil {
		return accelReady
	}
	if !accelFail.IsZero() && time.Since(accelFail) < retryAfter {
		return nil
	}
	a, err := accelLoad(ctx)
	if err != nil || a == nil {
		accelFail = time.Now()
		return nil
	}
	accelReady = a
	return a
}

// await runs fn on the accelerator without outliving ctx.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type res struct {
		v   T
		err error
	}
	ch := make(chan res, 1)
	go func() {
		v, err := fn()
		ch <- res{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// PolylineLengthContext is the bulk variant of PolylineLength. It prefers the
// accelerator and falls back to the pure calculation on any failure,
// including ctx expiry. Interactive paths call PolylineLength directly.
func PolylineLengthContext(ctx context.Context, points []float64) float64 {
	if a := accelerator(ctx); a != nil {
		if v, err := await(ctx, func() (float64, error) { return a.PolylineLength(ctx, points) }); err == nil && Finite(v) {
			return v
		}
	}
	return PolylineLength(points)
}

// DistanceToCircleContext is the bulk variant of DistanceToCircle.
func DistanceToCircleContext(ctx context.Context, p, c Pt, r float64) float64 {
	if a := accelerator(ctx); a != nil {
		if v, err := await(ctx, func() (float64, error) { return a.DistanceToCircle(ctx, p, c, r) }); err == nil && Finite(v) {
			return v
		}
	}
	return DistanceToCircle(p, c, r)
}

// RayCircleIntersectContext is the bulk variant of RayCircleIntersect.
func RayCircleIntersectContext(ctx context.Context, origin, dir, c Pt, r float64) (float64, bool) {
	type hit struct {
		t  float64
		ok bool
	}
	if a := accelerator(ctx); a != nil {
		h, err := await(ctx, func() (hit, error) {
			t, ok, err := a.RayCircleIntersect(ctx, origin, dir, c, r)
			return hit{t, ok}, err
		})
		if err == nil && Finite(h.t) {
			return h.t, h.ok
		}
	}
	return RayCircleIntersect(origin, dir, c, r)
}
