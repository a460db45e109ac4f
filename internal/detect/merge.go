package detect

// MergeOverlapping unions overlapping boxes until no pair overlaps,
// i.e. it computes the transitive closure of the overlap relation.
// Sprite counts per sheet are small (tens), so the restart-on-merge
// fixpoint is fine; output order after merges is not meaningful.
func MergeOverlapping(boxes []Box) []Box {
	out := make([]Box, len(boxes))
	copy(out, boxes)

	for {
		merged := false
		for i := 0; i < len(out) && !merged; i++ {
			for j := i + 1; j < len(out); j++ {
				if out[i].Overlaps(out[j]) {
					out[i] = out[i].Union(out[j])
					out = append(out[:j], out[j+1:]...)
					merged = true
					break
				}
			}
		}
		if !merged {
			return out
		}
	}
}
