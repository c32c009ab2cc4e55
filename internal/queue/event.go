package queue

import "git.lost.host/meutraa/tapbeat/internal/game"

// Kind tells which payload of an Event is set.
type Kind int

const (
	KindTap Kind = iota
	KindReset
	KindOnset
)

func (k Kind) String() string {
	switch k {
	case KindTap:
		return "tap"
	case KindReset:
		return "reset"
	case KindOnset:
		return "onset"
	}
	return "unknown"
}

// Event is one input to the engine tick.
type Event struct {
	Kind  Kind
	Tap   game.TapEvent
	Onset game.OnsetEvent
}

func TapEvent(t game.TapEvent) Event     { return Event{Kind: KindTap, Tap: t} }
func ResetEvent() Event                  { return Event{Kind: KindReset} }
func OnsetEvent(o game.OnsetEvent) Event { return Event{Kind: KindOnset, Onset: o} }
