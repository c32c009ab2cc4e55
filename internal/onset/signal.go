package onset

import "github.com/mjibson/go-dsp/window"

// mixer downmixes interleaved input to mono and decimates it by an integer
// factor with a box filter. Partial channel frames and partial decimation
// blocks are carried over to the next push.
type mixer struct {
	channels int
	factor   int

	carry []float64
	acc   float64
	n     int
}

func newMixer(sampleRate, channels, targetRate int) *mixer {
	if channels < 1 {
		channels = 1
	}
	factor := 1
	if targetRate > 0 && sampleRate > targetRate {
		factor = sampleRate / targetRate
	}
	return &mixer{channels: channels, factor: factor}
}

func (m *mixer) push(samples []float64, emit func(float64)) {
	if len(m.carry) > 0 {
		need := m.channels - len(m.carry)
		if len(samples) < need {
			m.carry = append(m.carry, samples...)
			return
		}
		m.carry = append(m.carry, samples[:need]...)
		m.mono(m.carry, emit)
		m.carry = m.carry[:0]
		samples = samples[need:]
	}
	whole := len(samples) - len(samples)%m.channels
	for i := 0; i < whole; i += m.channels {
		m.mono(samples[i:i+m.channels], emit)
	}
	m.carry = append(m.carry, samples[whole:]...)
}

func (m *mixer) mono(frame []float64, emit func(float64)) {
	sum := 0.0
	for _, s := range frame {
		sum += s
	}
	m.acc += sum / float64(m.channels)
	m.n++
	if m.n == m.factor {
		emit(m.acc / float64(m.factor))
		m.acc, m.n = 0, 0
	}
}

// framer cuts a mono stream into Hann windowed frames. Frame i is centered
// on sample i*hop; samples before the start of the stream read as silence.
type framer struct {
	size, hop int
	window    []float64

	buf    []float64
	offset int // stream index of buf[0]
	next   int // index of the next frame
}

func newFramer(size, hop int) *framer {
	return &framer{size: size, hop: hop, window: window.Hann(size)}
}

func (f *framer) push(x float64) { f.buf = append(f.buf, x) }

// ready reports whether the last sample of the next frame has arrived.
func (f *framer) ready() bool {
	return f.next*f.hop+f.size/2 <= f.offset+len(f.buf)
}

// take writes the next frame into dst and returns its index.
func (f *framer) take(dst []float64) int {
	i := f.next
	start := i*f.hop - f.size/2
	for k := range dst[:f.size] {
		at := start + k
		if at < 0 {
			dst[k] = 0
			continue
		}
		dst[k] = f.buf[at-f.offset] * f.window[k]
	}
	f.next++

	// Drop samples no later frame can see, in large steps so long
	// buffers are not copied once per frame.
	keep := f.next*f.hop - f.size/2
	if drop := keep - f.offset; drop > 0 && drop >= len(f.buf)/2 {
		f.buf = append(f.buf[:0], f.buf[drop:]...)
		f.offset = keep
	}
	return i
}
