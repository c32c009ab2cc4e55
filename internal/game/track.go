package game

// Track is a decoded audio file ready for analysis.
type Track struct {
	Path       string
	Sum        string // content hash used to key cached beat maps and history
	SampleRate int
	Channels   int
	Samples    []float64 // interleaved, in [-1,1]
}

// Duration returns the track length in seconds.
func (t *Track) Duration() float64 {
	if t.SampleRate == 0 || t.Channels == 0 {
		return 0
	}
	return float64(len(t.Samples)/t.Channels) / float64(t.SampleRate)
}
