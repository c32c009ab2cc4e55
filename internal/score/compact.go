package score

import "math"

// TimesCompact stores a list of timestamps as microsecond deltas.
type TimesCompact struct {
	Count  int
	Start  int64   // first time in microseconds
	Deltas []int64 `json:",omitempty"` // microseconds since the previous time
}

func compactTimes(times []float64) TimesCompact {
	c := TimesCompact{Count: len(times)}
	if len(times) == 0 {
		return c
	}
	prev := int64(math.Round(times[0] * 1e6))
	c.Start = prev
	for _, t := range times[1:] {
		q := int64(math.Round(t * 1e6))
		c.Deltas = append(c.Deltas, q-prev)
		prev = q
	}
	return c
}

func uncompactTimes(c TimesCompact) []float64 {
	times := make([]float64, 0, c.Count)
	if c.Count == 0 {
		return times
	}
	at := c.Start
	times = append(times, float64(at)/1e6)
	for _, d := range c.Deltas {
		at += d
		times = append(times, float64(at)/1e6)
	}
	return times
}
