// Package selection fixes the constrained-random semantics of select
// blocks, so the validator, the tests and any runtime implementation reason
// about the same contract instead of each inventing their own.
//
// The contract: when a selection step has multiple matching candidates the
// chooser picks uniformly at random, and pseudo-random input is consumed
// only when more than one candidate matches: zero draws for zero or exactly
// one match. Declaration order of rules fixes the order in which randomness
// is consumed, never the selection probability.
package selection

// Source yields uniform pseudo-random draws. math/rand.Rand satisfies it.
type Source interface {
	// Intn returns a uniform value in [0, n). Called only with n > 1.
	Intn(n int) int
}

// Pick chooses among n candidates. It returns the chosen index and whether
// a candidate exists at all. It consumes exactly one draw from src when
// n > 1 and none otherwise.
func Pick(n int, src Source) (int, bool) {
	switch {
	case n <= 0:
		return -1, false
	case n == 1:
		return 0, true
	default:
		return src.Intn(n), true
	}
}
