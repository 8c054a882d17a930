package mixer

// Step records one application of the transform at Index.
// Before is the state entering the step and After the state leaving it.
type Step struct {
	Index  int
	Input  byte
	Key    byte
	Mixed  byte
	Shift  uint
	Dir    Direction
	Before Block
	After  Block
}

// apply runs step i of the transform on m.
func apply(m, key Block, i int) Step {
	s := Step{
		Index:  i,
		Input:  m[i],
		Key:    key[i],
		Before: m,
	}
	s.Mixed = m[i] ^ key[i]
	s.Shift = shiftOf(s.Mixed)
	s.Dir = directionOf(s.Mixed)

	m[i] = s.Mixed
	s.After = rotate(m, s.Dir, s.Shift)
	return s
}

// Forward maps secret to the final state under key.
func Forward(secret, key Block) Block {
	m := secret
	for i := range Size {
		m = apply(m, key, i).After
	}
	return m
}

// ForwardTrace is Forward that also returns each step, in order.
func ForwardTrace(secret, key Block) (Block, []Step) {
	steps := make([]Step, 0, Size)
	m := secret
	for i := range Size {
		s := apply(m, key, i)
		steps = append(steps, s)
		m = s.After
	}
	return m, steps
}

// Verify reports whether secret maps to target under key.
func Verify(secret, key, target Block) bool {
	return Forward(secret, key) == target
}
