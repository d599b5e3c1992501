package dock

import (
	"github.com/1broseidon/ledge/internal/appbar"
	"github.com/1broseidon/ledge/internal/config"
	"github.com/1broseidon/ledge/internal/geometry"
)

// Geometry is the derived placement of the dock on one monitor. It is never
// mutated in place, only replaced on settings or monitor changes.
type Geometry struct {
	Side config.Side
	// Theoretical is the rectangle the dock occupies when it is not hidden.
	Theoretical geometry.Rect
	// Hidden is a 1-device-pixel sliver on the same edge, registered while
	// the dock is logically hidden so the reserved region collapses to
	// almost nothing without destroying the dock's window.
	Hidden   geometry.Rect
	HideMode config.HideMode
	WorkArea geometry.Rect
}

// ReservationRect selects the rectangle registered with the shell. Only a
// permanently visible dock reserves its full thickness; every other hide
// mode lets other windows use the region while the dock is not shown.
func (g Geometry) ReservationRect() geometry.Rect {
	if g.HideMode == config.HideNever {
		return g.Theoretical
	}
	return g.Hidden
}

// Edge maps the configured side onto the shell's edge constant.
func (g Geometry) Edge() appbar.Edge {
	switch g.Side {
	case config.SideLeft:
		return appbar.EdgeLeft
	case config.SideRight:
		return appbar.EdgeRight
	case config.SideTop:
		return appbar.EdgeTop
	default:
		return appbar.EdgeBottom
	}
}

// Positioner computes dock geometry from monitor work areas.
type Positioner struct {
	side      config.Side
	thickness int // device-independent units
	hideMode  config.HideMode
}

// NewPositioner builds a positioner from the dock configuration.
func NewPositioner(cfg *config.Config) *Positioner {
	return &Positioner{
		side:      cfg.Side,
		thickness: cfg.Thickness,
		hideMode:  cfg.HideMode,
	}
}

// Compute derives the dock geometry for a monitor work area at the given
// pixel scale. The scaled thickness is truncated toward zero.
func (p *Positioner) Compute(workArea geometry.Rect, scale float64) Geometry {
	thickness := int32(float64(p.thickness) * scale)

	theoretical := workArea
	hidden := workArea
	switch p.side {
	case config.SideLeft:
		theoretical.Right = theoretical.Left + thickness
		hidden.Right = hidden.Left + 1
	case config.SideRight:
		theoretical.Left = theoretical.Right - thickness
		hidden.Left = hidden.Right - 1
	case config.SideTop:
		theoretical.Bottom = theoretical.Top + thickness
		hidden.Bottom = hidden.Top + 1
	case config.SideBottom:
		theoretical.Top = theoretical.Bottom - thickness
		hidden.Top = hidden.Bottom - 1
	}

	return Geometry{
		Side:        p.side,
		Theoretical: theoretical,
		Hidden:      hidden,
		HideMode:    p.hideMode,
		WorkArea:    workArea,
	}
}
