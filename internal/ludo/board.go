package ludo

// Board geometry. The shared track is a 52-cell ring; each color owns a
// private 4-cell lane entered from the track cell immediately before its
// start cell.
const (
	TrackLen = 52
	LaneLen  = 4
)

type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Yellow Color = "yellow"
	Green  Color = "green"
)

// Colors lists all playable colors in assignment order.
var Colors = []Color{Red, Blue, Yellow, Green}

var startIndex = map[Color]int{
	Red:    0,
	Blue:   13,
	Yellow: 26,
	Green:  39,
}

func ValidColor(c Color) bool {
	_, ok := startIndex[c]
	return ok
}

// StartIndex is the track cell a piece of the given color deploys onto.
func StartIndex(c Color) int {
	return startIndex[c]
}

// EntryIndex is the track cell a piece must cross to enter its lane,
// one cell before the color's start.
func EntryIndex(c Color) int {
	return (startIndex[c] + TrackLen - 1) % TrackLen
}

// StepsToEntry counts the steps from pos up to and including the color's
// entry cell.
func StepsToEntry(c Color, pos int) int {
	return (EntryIndex(c) - pos + TrackLen) % TrackLen
}
