package fragments

// DefaultChunkBudget is the character budget applied to one translation call
// when the caller does not configure its own.
const DefaultChunkBudget = 3200

// Chunk groups fragments into ordered batches whose cumulative character
// length stays under the budget. A fragment longer than the budget still
// occupies exactly one batch of its own; fragments are never split.
func Chunk(frags []Fragment, budget int) [][]Fragment {
	if budget <= 0 {
		budget = DefaultChunkBudget
	}

	batches := make([][]Fragment, 0)
	var current []Fragment
	size := 0
	for _, frag := range frags {
		length := len(frag.Text)
		if len(current) > 0 && size+length > budget {
			batches = append(batches, current)
			current = nil
			size = 0
		}
		current = append(current, frag)
		size += length
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
