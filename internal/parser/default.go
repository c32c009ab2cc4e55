package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"

	"git.lost.host/meutraa/tapbeat/internal/game"
)

const streamBlock = 4096

type DefaultParser struct{}

// Sum hashes file contents the way beat maps and history are keyed.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func decode(rc io.ReadCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".mp3":
		return mp3.Decode(rc)
	case ".ogg":
		return vorbis.Decode(rc)
	case ".wav":
		return wav.Decode(rc)
	}
	rc.Close()
	return nil, beep.Format{}, errors.Wrap(ErrUnsupported, ext)
}

func (p *DefaultParser) Parse(path string) (*game.Track, error) {
	data, err := os.ReadFile(path)
	if nil != err {
		return nil, errors.Wrap(err, "read track")
	}

	streamer, format, err := decode(io.NopCloser(bytes.NewReader(data)), filepath.Ext(path))
	if nil != err {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	defer streamer.Close()

	channels := format.NumChannels
	if channels < 1 || channels > 2 {
		channels = 2
	}
	track := &game.Track{
		Path:       path,
		Sum:        Sum(data),
		SampleRate: int(format.SampleRate),
		Channels:   channels,
	}
	if n := streamer.Len(); n > 0 {
		track.Samples = make([]float64, 0, n*channels)
	}

	buf := make([][2]float64, streamBlock)
	for {
		n, ok := streamer.Stream(buf)
		for _, s := range buf[:n] {
			track.Samples = append(track.Samples, s[0])
			if channels == 2 {
				track.Samples = append(track.Samples, s[1])
			}
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); nil != err {
		return nil, errors.Wrapf(err, "stream %s", path)
	}
	return track, nil
}

func (p *DefaultParser) Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, beep.Format{}, errors.Wrap(err, "open track")
	}
	streamer, format, err := decode(f, filepath.Ext(path))
	if nil != err {
		return nil, beep.Format{}, errors.Wrapf(err, "decode %s", path)
	}
	return streamer, format, nil
}
