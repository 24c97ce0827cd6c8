package effect

import "math"

// Stacks counts how many applications a merged effect instance has
// absorbed. Gameplay scales its numbers by Count.
type Stacks struct {
	Count int32
	// Max caps Count when positive. Zero or negative means uncapped.
	Max int32
}

// NewStacks returns a counter starting at n, with a minimum of one stack.
func NewStacks(n int32) Stacks {
	if n < 1 {
		n = 1
	}
	return Stacks{Count: n}
}

// WithMax returns a copy of s capped at max stacks.
func (s Stacks) WithMax(max int32) Stacks {
	s.Max = max
	return s
}

// Merge adds the previous count to s, saturating instead of wrapping and
// respecting s's cap when set.
func (s *Stacks) Merge(old Stacks) {
	sum := int64(s.Count) + int64(old.Count)
	if s.Max > 0 && sum > int64(s.Max) {
		sum = int64(s.Max)
	}
	if sum > math.MaxInt32 {
		sum = math.MaxInt32
	}
	s.Count = int32(sum)
}
