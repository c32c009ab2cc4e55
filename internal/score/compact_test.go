package score

import (
	"math"
	"testing"
)

var compactTests = map[*([]float64)]TimesCompact{
	{}:                 {},
	{1.5}:              {Count: 1, Start: 1500000},
	{0.25, 0.75, 1.26}: {Count: 3, Start: 250000, Deltas: []int64{500000, 510000}},
	{2, 1}:             {Count: 2, Start: 2000000, Deltas: []int64{-1000000}},
}

func TestCompactTimes(t *testing.T) {
	equal := func(p, q TimesCompact) bool {
		if p.Count != q.Count || p.Start != q.Start || len(p.Deltas) != len(q.Deltas) {
			return false
		}
		for i := range p.Deltas {
			if p.Deltas[i] != q.Deltas[i] {
				return false
			}
		}
		return true
	}

	for in, expected := range compactTests {
		out := compactTimes(*in)
		if !equal(out, expected) {
			t.Log("out     ", out)
			t.Log("expected", expected)
			t.Fail()
		}
	}
}

func TestUncompactTimes(t *testing.T) {
	for expected, in := range compactTests {
		out := uncompactTimes(in)
		if len(out) != len(*expected) {
			t.Log("in      ", in)
			t.Log("expected", *expected)
			t.Fail()
			continue
		}
		for i := range out {
			if math.Abs(out[i]-(*expected)[i]) > 1e-9 {
				t.Log("out     ", out)
				t.Log("expected", *expected)
				t.Fail()
				break
			}
		}
	}
}

var result TimesCompact

func BenchmarkCompactTimes(b *testing.B) {
	times := make([]float64, 2000)
	for i := range times {
		times[i] = float64(i) * 0.4837
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		result = compactTimes(times)
	}
}
