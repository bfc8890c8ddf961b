package buffer

// Loc is a character-indexed position within a document. X is the rune
// offset within line Y, never a byte offset or display column. X may
// equal the line's rune length, and Y the line count, to address the
// respective append positions.
type Loc struct {
	X int
	Y int
}

// At is a shorthand constructor for Loc.
func At(x, y int) Loc {
	return Loc{X: x, Y: y}
}

// Size holds viewport dimensions. It only bounds how many lines are
// kept resident; it never affects edit correctness.
type Size struct {
	W int
	H int
}
