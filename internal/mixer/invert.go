package mixer

import (
	"errors"
	"fmt"
)

var ErrInversion = errors.New("no consistent mixed byte")

// InversionError is returned when no secret maps to the target under the key.
// Index is the lowest step the search reached and State the state it was
// trying to undo there.
type InversionError struct {
	Index int
	State Block
}

func (e *InversionError) Error() string {
	return fmt.Sprintf("invert step %d: %v for state %s", e.Index, ErrInversion, e.State)
}

func (e *InversionError) Unwrap() error {
	return ErrInversion
}

// candidate tries x as the mixed byte of step i, given the state after it.
// It returns the state before the step when x is consistent: undoing the
// rotation x selects must expose x at position i, and replaying the step on
// the reconstructed state must reproduce after exactly.
func candidate(after, key Block, i int, x byte) (Step, bool) {
	pre := rotate(after, directionOf(x).Inverse(), shiftOf(x))
	if pre[i] != x {
		return Step{}, false
	}
	before := pre
	before[i] = x ^ key[i]
	s := apply(before, key, i)
	if s.After != after {
		return Step{}, false
	}
	return s, true
}

// candidates returns every consistent step i for after, by ascending mixed byte.
func candidates(after, key Block, i int) []Step {
	var out []Step
	for x := range 256 {
		if s, ok := candidate(after, key, i, byte(x)); ok {
			out = append(out, s)
		}
	}
	return out
}

// search undoes steps from the last one down to 0. Candidates are tried in
// ascending order and a choice that dead-ends further down is rolled back.
// visit receives each complete path, last step first; returning false stops
// the search.
type search struct {
	key   Block
	path  []Step
	visit func(secret Block, path []Step) bool

	// deepest dead end seen so far
	lowest int
	stuck  Block
}

func newSearch(key Block, visit func(Block, []Step) bool) *search {
	return &search{
		key:    key,
		path:   make([]Step, 0, Size),
		visit:  visit,
		lowest: Size,
	}
}

func (s *search) run(after Block, i int) bool {
	if i < 0 {
		return s.visit(after, s.path)
	}
	if i < s.lowest {
		s.lowest, s.stuck = i, after
	}
	for _, st := range candidates(after, s.key, i) {
		s.path = append(s.path, st)
		more := s.run(st.Before, i-1)
		s.path = s.path[:len(s.path)-1]
		if !more {
			return false
		}
	}
	return true
}

// Invert returns the secret that Forward maps to target under key.
// When several secrets qualify, the one whose mixed bytes are smallest from
// the last step backwards is returned.
func Invert(key, target Block) (Block, error) {
	secret, _, err := InvertTrace(key, target)
	return secret, err
}

// InvertTrace is Invert that also returns the undone steps, last step first.
func InvertTrace(key, target Block) (Block, []Step, error) {
	var (
		secret Block
		steps  []Step
		found  bool
	)
	s := newSearch(key, func(b Block, path []Step) bool {
		secret = b
		steps = append([]Step(nil), path...)
		found = true
		return false
	})
	s.run(target, Size-1)
	if !found {
		return Block{}, nil, &InversionError{Index: s.lowest, State: s.stuck}
	}
	return secret, steps, nil
}

// Preimages returns every secret Forward maps to target under key, in the
// order Invert would consider them. limit <= 0 means no limit.
func Preimages(key, target Block, limit int) []Block {
	var out []Block
	s := newSearch(key, func(b Block, _ []Step) bool {
		out = append(out, b)
		return limit <= 0 || len(out) < limit
	})
	s.run(target, Size-1)
	return out
}
