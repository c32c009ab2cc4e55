package game

import "sort"

// Beat is one entry of a beat map.
type Beat struct {
	Time float64 // when the beat should be hit, seconds from track start

	// This is state
	HitTime float64 // when the beat was claimed by a tap
	Hit     bool
	Miss    bool // counted as a miss at track end
}

// BeatMap is the ordered list of beats of one track.
type BeatMap struct {
	Beats []*Beat
}

// NewBeatMap builds a beat map from onset times, sorting a copy.
func NewBeatMap(onsets []float64) *BeatMap {
	times := append([]float64(nil), onsets...)
	sort.Float64s(times)
	beats := make([]*Beat, len(times))
	for i, t := range times {
		beats[i] = &Beat{Time: t}
	}
	return &BeatMap{Beats: beats}
}

// Times returns the beat times in order.
func (m *BeatMap) Times() []float64 {
	times := make([]float64, len(m.Beats))
	for i, b := range m.Beats {
		times[i] = b.Time
	}
	return times
}

// Clone returns a beat map with the same times and no play state.
func (m *BeatMap) Clone() *BeatMap {
	return NewBeatMap(m.Times())
}

// Search returns the index of the first beat at or after t.
func (m *BeatMap) Search(t float64) int {
	return sort.Search(len(m.Beats), func(i int) bool { return m.Beats[i].Time >= t })
}

// End returns the time of the last beat, or 0 for an empty map.
func (m *BeatMap) End() float64 {
	if len(m.Beats) == 0 {
		return 0
	}
	return m.Beats[len(m.Beats)-1].Time
}
