package types

import "fmt"

// Position is a source location: 1-based row/column plus a 0-based byte
// offset into the source text. Every Node carries one, and every pass must
// leave it unchanged when it carries a node forward (spec §4.7) — deep-copied
// subtrees inherit the original position rather than a synthetic one, so
// error messages always point into the user's text.
type Position struct {
	Row    int
	Column int
	Offset int
}

// String renders the position the way diagnostics quote it: "row:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}
