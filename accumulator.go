package locpatch

// Accumulator collects units in file order until a batch is full.
type Accumulator struct {
	limit   int
	pending []Unit
}

// NewAccumulator creates an accumulator that is full at limit units.
func NewAccumulator(limit int) *Accumulator {
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	return &Accumulator{limit: limit}
}

// Add appends a unit and reports whether the batch reached its limit.
func (a *Accumulator) Add(u Unit) bool {
	a.pending = append(a.pending, u)
	return len(a.pending) >= a.limit
}

// Len returns the number of pending units.
func (a *Accumulator) Len() int {
	return len(a.pending)
}

// Take returns the pending batch and empties the accumulator.
func (a *Accumulator) Take() []Unit {
	batch := a.pending
	a.pending = nil
	return batch
}
