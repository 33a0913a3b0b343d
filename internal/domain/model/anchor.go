package model

// AnchorCandidate is a rendered block that carries the source line it was
// produced from. Line holds the raw attribute value; it may be empty or invalid.
type AnchorCandidate struct {
	Ref  string // Element id used to link a marker to the block.
	Line string
}

// ThreadAnchor places one inline comment thread against the rendered document.
type ThreadAnchor struct {
	ThreadRootID int64
	ReviewID     int64
	Status       AnchorStatus
	TargetLine   int    // Root comment's diff line; zero when outdated.
	Ref          string // Matched candidate ref; empty unless anchored.
	AnchorLine   int    // Matched candidate line; zero unless anchored.
}
