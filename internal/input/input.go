// Package input turns key presses into engine events.
package input

import (
	"context"

	"github.com/eiannone/keyboard"

	"git.lost.host/meutraa/tapbeat/internal/game"
	"git.lost.host/meutraa/tapbeat/internal/queue"
)

type Action int

const (
	ActionNone Action = iota
	ActionTap
	ActionReset
	ActionQuit
)

// Classify maps a key press to an action. Digit keys tap with that many
// touches, so '3' is the three finger reset gesture.
func Classify(ev keyboard.KeyEvent) (Action, int) {
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return ActionQuit, 0
	case keyboard.KeySpace, keyboard.KeyEnter:
		return ActionTap, 1
	}
	switch r := ev.Rune; {
	case r == 'q':
		return ActionQuit, 0
	case r == 'r':
		return ActionReset, 0
	case r >= '1' && r <= '9':
		return ActionTap, int(r - '0')
	case r == 'j' || r == 'f' || r == 'k' || r == 'd':
		return ActionTap, 1
	}
	return ActionNone, 0
}

// Forward reads key presses until keys is closed, ctx is done or a quit
// key is pressed, stamping each with clock and posting it. Forward runs on
// its own goroutine; post must not block.
func Forward(ctx context.Context, keys <-chan keyboard.KeyEvent, clock func() float64, post func(queue.Event) bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			if nil != ev.Err {
				return ev.Err
			}
			now := clock()
			switch action, touches := Classify(ev); action {
			case ActionQuit:
				return nil
			case ActionReset:
				post(queue.ResetEvent())
			case ActionTap:
				post(queue.TapEvent(game.TapEvent{Time: now, Touches: touches}))
			}
		}
	}
}

// Keyboard is the terminal keyboard in raw mode.
type Keyboard struct {
	keys <-chan keyboard.KeyEvent
}

func Open(buffer int) (*Keyboard, error) {
	keys, err := keyboard.GetKeys(buffer)
	if nil != err {
		return nil, err
	}
	return &Keyboard{keys: keys}, nil
}

func (k *Keyboard) Keys() <-chan keyboard.KeyEvent { return k.keys }

func (k *Keyboard) Close() error { return keyboard.Close() }
