// Package parser decodes audio files into tracks for analysis and into
// streams for playback.
package parser

import (
	"github.com/faiface/beep"

	"git.lost.host/meutraa/tapbeat/internal/game"
)

type Parser interface {
	// Parse decodes the whole file at path.
	Parse(path string) (*game.Track, error)

	// Open returns a playback stream of the file at path.
	Open(path string) (beep.StreamSeekCloser, beep.Format, error)
}
