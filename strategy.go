package locpatch

// BatchStrategy controls batch size and how a failed batch degrades.
type BatchStrategy interface {
	// BatchSize is the number of units that triggers a flush.
	BatchSize() int

	// Degrade splits a failed batch for another attempt at the given depth
	// (0 for the first failure). It returns false when the units should be
	// given up and logged.
	Degrade(units []Unit, depth int) ([][]Unit, bool)
}

// Default batching values.
const (
	DefaultBatchSize     = 50
	DefaultFallbackDepth = 1
)

// FixedStrategy batches Size units at a time. A failed batch is halved on
// each of the first FallbackDepth-1 levels; the last level retries every
// unit on its own. FallbackDepth 0 disables the fallback.
type FixedStrategy struct {
	Size          int
	FallbackDepth int
}

// DefaultStrategy batches 50 units and falls straight back to single units.
func DefaultStrategy() FixedStrategy {
	return FixedStrategy{Size: DefaultBatchSize, FallbackDepth: DefaultFallbackDepth}
}

// BatchSize implements BatchStrategy.
func (s FixedStrategy) BatchSize() int {
	if s.Size <= 0 {
		return DefaultBatchSize
	}
	return s.Size
}

// Degrade implements BatchStrategy.
func (s FixedStrategy) Degrade(units []Unit, depth int) ([][]Unit, bool) {
	if depth >= s.FallbackDepth || len(units) == 0 {
		return nil, false
	}

	if depth == s.FallbackDepth-1 || len(units) <= 2 {
		parts := make([][]Unit, len(units))
		for i := range units {
			parts[i] = units[i : i+1]
		}
		return parts, true
	}

	mid := len(units) / 2
	return [][]Unit{units[:mid], units[mid:]}, true
}

// Verify FixedStrategy implements BatchStrategy
var _ BatchStrategy = FixedStrategy{}
