package macro

import (
	"github.com/ormasoftchile/atcmacro/pkg/offsets"
	"github.com/ormasoftchile/atcmacro/pkg/settings"
)

// PocketPosition returns the machine X/Y of the pocket holding tool. Tools
// at or below zero map to pocket 1, which doubles as the "no tool" position.
func PocketPosition(s settings.Settings, tool int) settings.Point {
	p := s.Pocket1
	if tool <= 0 {
		return p
	}
	offset := float64(tool-1) * s.PocketDistance
	if s.Direction == settings.DirectionNegative {
		offset = -offset
	}
	if s.Orientation == settings.OrientationY {
		p.Y += offset
	} else {
		p.X += offset
	}
	return p
}

func pointAdd(p settings.Point, off offsets.Offset) settings.Point {
	return settings.Point{X: p.X + off.X, Y: p.Y + off.Y}
}
