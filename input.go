package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/echoes/session"
)

// Input holds the actions polled this frame.
type Input struct {
	// MoveX is -1 for left, 0 for none, +1 for right.
	MoveX float64
	// JumpPressed is true on the frame the jump key is pressed.
	JumpPressed bool
	// EchoPressed is true on the frame the echo key is pressed.
	EchoPressed bool
	ClearPressed bool

	PausePressed   bool
	RestartPressed bool
	NextPressed    bool
	SavePressed    bool
	LoadPressed    bool
	CopyPressed    bool
	PastePressed   bool
}

func NewInput() *Input {
	return &Input{}
}

// Update polls keyboard and the first gamepad.
func (i *Input) Update() {
	var moveX float64
	// Keyboard D/A or arrows
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		moveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		moveX += 1
	}

	var gpJump, gpEcho, gpClear, gpPause bool
	if ids := ebiten.GamepadIDs(); len(ids) > 0 {
		gid := ids[0]

		leftX := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if leftX < -0.3 {
			moveX = -1
		} else if leftX > 0.3 {
			moveX = 1
		}

		gpJump = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightBottom)
		gpEcho = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightLeft)
		gpClear = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightTop)
		gpPause = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterRight)
	}

	i.MoveX = moveX
	i.JumpPressed = inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
		inpututil.IsKeyJustPressed(ebiten.KeyW) ||
		inpututil.IsKeyJustPressed(ebiten.KeyUp) || gpJump
	i.EchoPressed = inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyE) || gpEcho
	i.ClearPressed = inpututil.IsKeyJustPressed(ebiten.KeyC) || gpClear

	i.PausePressed = inpututil.IsKeyJustPressed(ebiten.KeyEscape) || gpPause
	i.RestartPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
	i.NextPressed = inpututil.IsKeyJustPressed(ebiten.KeyN)
	i.SavePressed = inpututil.IsKeyJustPressed(ebiten.KeyF5)
	i.LoadPressed = inpututil.IsKeyJustPressed(ebiten.KeyF9)
	i.CopyPressed = inpututil.IsKeyJustPressed(ebiten.KeyF6)
	i.PastePressed = inpututil.IsKeyJustPressed(ebiten.KeyF7)
}

// Intent maps the polled state to a session intent.
func (i *Input) Intent() session.Intent {
	return session.Intent{
		MoveX:       i.MoveX,
		Jump:        i.JumpPressed,
		Echo:        i.EchoPressed,
		ClearEchoes: i.ClearPressed,
	}
}
