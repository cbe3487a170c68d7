/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package draw implements the random draw game: picking unused
// participant/outcome pairs until the outcomes run out.
package draw

import (
	"math/rand/v2"
)

// IntN returns a uniformly distributed int in [0, n).
type IntN func(n int) int

func (f IntN) orDefault() IntN {
	if f == nil {
		return rand.IntN
	}
	return f
}

// Available returns the indices of candidates not present in consumed, in order.
func Available[T any](candidates []T, consumed map[int]bool) []int {
	available := make([]int, 0, len(candidates))
	for i := range candidates {
		if !consumed[i] {
			available = append(available, i)
		}
	}
	return available
}

// SelectIndex picks one index of candidates that is not in consumed, each
// remaining index being equally likely. Consumed indices outside the range
// of candidates are ignored.
//
// At least one index must remain available; callers check for exhaustion
// first, and SelectIndex panics otherwise.
func SelectIndex[T any](candidates []T, consumed map[int]bool, intn IntN) int {
	available := Available(candidates, consumed)
	if len(available) == 0 {
		panic("draw: SelectIndex called with no available candidates")
	}

	return available[intn.orDefault()(len(available))]
}
