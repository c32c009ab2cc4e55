package theme

import (
	"fmt"
	"image/color"
	"math"

	"git.lost.host/meutraa/tapbeat/internal/game"
)

type DefaultTheme struct{}

func (t *DefaultTheme) RenderTier(tier game.Tier) string {
	c := tierColors[tier]
	return fmt.Sprintf("\033[1;38;2;%v;%v;%vm%8v\033[0m", c.R, c.G, c.B, tierNames[tier])
}

func (t *DefaultTheme) RenderBeat(phase float64) string {
	c := beatColor(phase)
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, beatSym)
}

func (t *DefaultTheme) RenderHitField() string {
	return barSym
}

const (
	beatSym = "⬤"
	barSym  = "-"
)

var (
	tierNames = [...]string{
		game.Perfect: "Perfect",
		game.Good:    "Good",
		game.OK:      "Okay",
		game.Miss:    "Miss",
	}
	tierColors = [...]color.RGBA{
		game.Perfect: {173, 236, 236, 255}, // light blue
		game.Good:    {0, 236, 128, 255},   // green
		game.OK:      {236, 195, 0, 255},   // yellow
		game.Miss:    {236, 30, 0, 255},    // red
	}
)

// beatColor fades from white on the beat to grey halfway between beats.
func beatColor(phase float64) color.RGBA {
	d := math.Abs(phase - math.Round(phase))
	v := uint8(255 - math.Round(d*2*(255-106)))
	return color.RGBA{v, v, v, 255}
}
