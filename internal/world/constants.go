package world

// Motion/camera constants shared by the map loader (initial eye height)
// and Motion (crouch toggle, step/head clearances). Values match the
// original engine's tuning (§9).
const (
	EyeHeight  = 6.0
	DuckHeight = 2.5
	HeadMargin = 1.0
	KneeHeight = 2.0
)
