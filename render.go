package main

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/echoes/common"
	"github.com/milk9111/echoes/echo"
	"github.com/milk9111/echoes/levels"
	"github.com/milk9111/echoes/physics"
	"github.com/milk9111/echoes/session"
)

var (
	backgroundColor = color.RGBA{R: 0x12, G: 0x12, B: 0x1c, A: 0xff}
	echoColor       = color.RGBA{R: 0x80, G: 0xc0, B: 0xff, A: 0xff}
)

func kindColor(k levels.Kind) color.Color {
	switch k {
	case levels.KindSwitch:
		return colornames.Goldenrod
	case levels.KindBarrier:
		return colornames.Slategray
	case levels.KindGoal:
		return colornames.Mediumseagreen
	case levels.KindMemory:
		return colornames.Orchid
	default:
		return colornames.Dimgray
	}
}

// fillBody draws a body's shape centered on its position.
func fillBody(screen *ebiten.Image, b *physics.Body, clr color.Color) {
	s := b.Shape()
	p := b.Position()
	w, h := s.W, s.H
	if s.Kind == physics.ShapeCircle {
		w, h = 2*s.R, 2*s.R
	}
	vector.FillRect(screen, float32(p.X-w/2), float32(p.Y-h/2), float32(w), float32(h), clr, false)
}

func drawLevel(screen *ebiten.Image, s *session.Session) {
	screen.Fill(backgroundColor)

	rt := s.Puzzle()
	collected := rt.Collected()
	pressed := rt.Pressed()
	for _, f := range rt.Fixtures() {
		r := f.Object.Bounds()
		x, y, w, h := float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height)
		clr := kindColor(f.Object.Kind())

		switch o := f.Object.(type) {
		case levels.Barrier:
			if f.Open {
				vector.StrokeRect(screen, x, y, w, h, 1, clr, false)
				continue
			}
		case levels.Memory:
			if slices.Contains(collected, o.ID) {
				continue
			}
		case levels.Switch:
			if slices.Contains(pressed, o.ID) {
				clr = colornames.Yellow
			}
		}
		vector.FillRect(screen, x, y, w, h, clr, false)
	}
}

func drawEchoes(screen *ebiten.Image, s *session.Session) {
	w := s.World()
	for _, v := range s.Echoes().ActiveEchoes() {
		e, ok := s.Echoes().Echo(v.ID)
		if !ok {
			continue
		}
		b, ok := w.Body(e.Body())
		if !ok {
			continue
		}
		// Echoes fade as they age.
		alpha := common.Lerp(200, 40, common.Fraction(v.Age, e.MaxAge()))
		clr := echoColor
		clr.A = uint8(alpha)
		fillBody(screen, b, premultiply(clr))
		if v.Mode == echo.ModeFreeFall {
			p := b.Position()
			vector.StrokeLine(screen, float32(p.X), float32(p.Y), float32(e.Origin().X), float32(e.Origin().Y), 1, colornames.Lightgrey, true)
		}
	}
}

func drawPlayer(screen *ebiten.Image, s *session.Session) {
	p := s.Player()
	b, ok := s.World().Body(p.Handle())
	if !ok {
		return
	}
	fillBody(screen, b, colornames.Crimson)

	// Facing marker.
	pos := b.Position()
	dx := float32(p.Facing()) * float32(b.Shape().W) / 2
	vector.StrokeLine(screen, float32(pos.X), float32(pos.Y), float32(pos.X)+dx, float32(pos.Y), 2, colornames.White, true)

	// Energy bar above the player.
	frac := common.Fraction(p.Energy(), p.Config().MaxEnergy)
	bx, by := float32(pos.X-20), float32(pos.Y-b.Shape().H/2-10)
	vector.FillRect(screen, bx, by, 40, 4, colornames.Darkslategray, false)
	vector.FillRect(screen, bx, by, 40*frac, 4, colornames.Deepskyblue, false)
}

func drawHUD(screen *ebiten.Image, s *session.Session, debug bool) {
	p := s.Player()
	lvl := s.Level()
	msg := fmt.Sprintf("%s  |  echoes %d/%d  energy %.0f  cooldown %.1f",
		lvl.Title, s.Echoes().Len(), s.Echoes().Config().Capacity, p.Energy(), p.Cooldown())
	if debug {
		st := s.World().Stats()
		msg += fmt.Sprintf("\nFPS %.1f  bodies %d  checks %d  contacts %d  step %s",
			ebiten.ActualFPS(), st.Bodies, st.CollisionChecks, st.CollisionsDetected, st.UpdateTime)
		msg += fmt.Sprintf("\nrecording %.1fs  pressed %v", s.Recorder().Elapsed(), s.Puzzle().Pressed())
	}
	ebitenutil.DebugPrint(screen, msg)
}

func drawStatus(screen *ebiten.Image, msg string) {
	ebitenutil.DebugPrintAt(screen, msg, 20, common.BaseHeight-40)
}

func premultiply(c color.RGBA) color.RGBA {
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 0xff),
		G: uint8(uint32(c.G) * a / 0xff),
		B: uint8(uint32(c.B) * a / 0xff),
		A: c.A,
	}
}
