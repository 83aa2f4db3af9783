// Package position models stack positions of saved snapshots.
//
// Positions are live ordinals into the snapshot stack: position 0 is the most
// recently saved entry and every save shifts existing entries down by one.
// Holders of a position must recompute it after any mutation of the stack
// rather than reuse a stale value.
package position

// Shift returns where a snapshot at original sits after insertions new
// entries have been pushed above it.
func Shift(original, insertions int) int {
	return original + insertions
}
