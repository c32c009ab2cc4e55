package capture

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const pcmChunkFrames = 256

// ReadPCM reads signed 16 bit little endian interleaved PCM from r into
// ring until r is exhausted or ctx is cancelled. A trailing partial frame is
// discarded. It returns nil on a clean end of input.
//
// If r is an io.Closer it is closed once ctx is done, so a Read blocked on
// a silent pipe returns. Readers that are not closers are only checked for
// cancellation between reads.
func ReadPCM(ctx context.Context, r io.Reader, ring *Ring, channels int) error {
	if channels < 1 {
		channels = 1
	}
	if c, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}
	br := bufio.NewReader(r)
	frame := channels * 2
	raw := make([]byte, pcmChunkFrames*frame)
	samples := make([]float64, pcmChunkFrames*channels)
	have := 0

	for {
		if err := ctx.Err(); nil != err {
			return err
		}
		n, err := br.Read(raw[have:])
		have += n
		frames := have / frame
		for i := 0; i < frames*channels; i++ {
			v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
			samples[i] = float64(v) / 32768
		}
		if frames > 0 {
			ring.Write(samples[:frames*channels])
		}
		have = copy(raw, raw[frames*frame:have])

		switch {
		case nil == err:
		case nil != ctx.Err():
			return ctx.Err()
		case errors.Is(err, io.EOF):
			return nil
		default:
			return errors.Wrap(err, "read pcm")
		}
	}
}
