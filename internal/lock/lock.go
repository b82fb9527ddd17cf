// Package lock provides keyed advisory locks that bracket the
// check-then-write sequence of timetable mutations.
package lock

import (
	"context"
	"errors"
	"sort"
)

// ErrTimeout is returned when a key stays held past the wait budget.
var ErrTimeout = errors.New("lock wait timed out")

// Unlock releases every key acquired by one Lock call.
type Unlock func()

// Nop never blocks. Store constraints remain the only guard.
type Nop struct{}

func (Nop) Lock(context.Context, ...string) (Unlock, error) { return func() {}, nil }

// normalize sorts and dedupes keys so concurrent callers acquire
// overlapping sets in the same order.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
