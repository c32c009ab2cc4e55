package game

// Provenance names of onset sources.
const (
	SourceSystem     = "system"
	SourceMicrophone = "mic"
	SourceTrack      = "track"
)

// OnsetEvent is a detected onset from one audio source.
type OnsetEvent struct {
	Time   float64 // seconds on the session clock
	Trust  float64 // fraction of the error allowed to move the grid, in (0,1]
	Source string
}

// TapEvent is a tap from the input layer. Position is carried for the
// presentation layer only.
type TapEvent struct {
	Time     float64
	Touches  int
	Position [2]float64
}
