// Package preview draws a character in a desktop window and maps keys to
// character actions.
package preview

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/normanking/anty/internal/avatar"
	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/mascot"
	"github.com/normanking/anty/internal/scene"
	"github.com/normanking/anty/internal/settings"
)

const (
	minSize          = 40.0
	maxSize          = 480.0
	sizeStep         = 1.1
	defaultSuperMode = 1.3
)

var (
	background   = color.RGBA{R: 18, G: 20, B: 28, A: 255}
	bodyColor    = color.RGBA{R: 235, G: 238, B: 245, A: 255}
	eyeColor     = color.RGBA{R: 250, G: 250, B: 255, A: 255}
	glowColor    = color.RGBA{R: 120, G: 170, B: 255, A: 255}
	shadowColor  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	overlayColor = color.RGBA{R: 0, G: 0, B: 0, A: 150}
)

// hotkeys binds the number row to emotions.
var hotkeys = []struct {
	key     ebiten.Key
	emotion emotion.Type
}{
	{ebiten.KeyDigit1, emotion.Happy},
	{ebiten.KeyDigit2, emotion.Celebrate},
	{ebiten.KeyDigit3, emotion.Excited},
	{ebiten.KeyDigit4, emotion.Sad},
	{ebiten.KeyDigit5, emotion.Angry},
	{ebiten.KeyDigit6, emotion.Shocked},
	{ebiten.KeyDigit7, emotion.Spin},
	{ebiten.KeyDigit8, emotion.Idea},
	{ebiten.KeyDigit9, emotion.LookAround},
	{ebiten.KeyDigit0, emotion.Wink},
}

// Options configures a Game.
type Options struct {
	Character *mascot.Character
	Settings  *settings.Store
	Window    config.WindowConfig
	Logger    zerolog.Logger
}

// Game implements ebiten.Game for one character.
type Game struct {
	ch     *mascot.Character
	store  *settings.Store
	layout scene.Layout
	width  int
	height int
	size   float64
	log    zerolog.Logger
}

// New creates the game and applies saved preferences to the character.
func New(opts Options) *Game {
	g := &Game{
		ch:     opts.Character,
		store:  opts.Settings,
		layout: scene.DefaultLayout(),
		width:  opts.Window.Width,
		height: opts.Window.Height,
		log:    opts.Logger,
	}
	if g.width <= 0 {
		g.width = 480
	}
	if g.height <= 0 {
		g.height = 480
	}
	if g.store == nil {
		g.store = settings.New(nil, opts.Logger)
	}
	g.size = g.ch.SizeScale() * scene.ReferenceSize

	prefs := g.store.Prefs()
	if prefs.Size > 0 {
		g.resize(prefs.Size)
	}
	if prefs.SuperScale > 0 {
		g.ch.SetSuperMode(prefs.SuperScale)
	}
	return g
}

// Run opens the window and blocks until it closes.
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(mascot.DefaultFPS)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run preview: %w", err)
	}
	return nil
}

// Update handles input and advances the character one tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.handleInput()
	g.ch.Tick(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) handleInput() {
	for _, hk := range hotkeys {
		if inpututil.IsKeyJustPressed(hk.key) {
			force := ebiten.IsKeyPressed(ebiten.KeyShift)
			g.ch.Emote(hk.emotion, mascot.EmoteOptions{Force: force})
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.ch.PowerOff()
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		g.ch.WakeUp()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		if g.ch.State() == avatar.StateSearch {
			g.ch.ExitSearch()
		} else {
			g.ch.EnterSearch()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if g.ch.State() == avatar.StatePaused {
			g.ch.Resume()
		} else {
			g.ch.Pause()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.ch.Recover()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.resize(g.size * sizeStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.resize(g.size / sizeStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.toggleSuper()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.save(func(p *settings.Prefs) { p.DebugOverlay = !p.DebugOverlay })
	}
}

func (g *Game) resize(px float64) {
	px = math.Max(minSize, math.Min(maxSize, px))
	g.size = px
	g.ch.SetSize(px)
	g.save(func(p *settings.Prefs) { p.Size = px })
}

func (g *Game) toggleSuper() {
	scale := 0.0
	if g.store.Prefs().SuperScale <= 0 {
		scale = defaultSuperMode
	}
	g.ch.SetSuperMode(scale)
	g.save(func(p *settings.Prefs) { p.SuperScale = scale })
}

func (g *Game) save(fn func(*settings.Prefs)) {
	if err := g.store.Update(fn); err != nil {
		g.log.Warn().Err(err).Msg("failed to save preferences")
	}
}

// Draw renders the current frame.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	b := screen.Bounds()
	origin := mgl64.Vec2{float64(b.Dx()) / 2, float64(b.Dy()) / 2}
	size := g.ch.SizeScale() * scene.ReferenceSize
	sc := scene.Build(g.ch.Elements(), g.layout, size, origin)

	drawShadow(screen, sc.Shadow)
	drawGlow(screen, sc.OuterGlow, 0.35)
	drawGlow(screen, sc.InnerGlow, 0.5)
	for _, br := range sc.Brackets {
		drawBracket(screen, br, sc.Opacity)
	}
	for _, eye := range sc.Eyes {
		drawEye(screen, eye, sc.Opacity)
	}

	if g.store.Prefs().DebugOverlay {
		g.drawOverlay(screen)
	}
}

// Layout follows the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (g *Game) drawOverlay(screen *ebiten.Image) {
	snap := g.ch.Snapshot()
	vector.DrawFilledRect(screen, 0, 0, 260, 84, overlayColor, false)
	msg := fmt.Sprintf("state: %s\nemotion: %s\neyes: %s  blinks: %d\nsize: %.0fpx  queue: %d\nTPS: %.0f",
		snap.State, snap.Emotion, snap.Eyes, snap.Blinks, g.size, len(snap.Queue), ebiten.ActualTPS())
	ebitenutil.DebugPrintAt(screen, msg, 8, 4)
	ebitenutil.DebugPrintAt(screen, "0-9 emote  P off  W wake  S search  SPACE pause  R recover  M super  D overlay",
		8, screen.Bounds().Dy()-20)
}

func fade(c color.RGBA, opacity float64) color.RGBA {
	a := math.Max(0, math.Min(1, opacity))
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}

func drawShadow(screen *ebiten.Image, s scene.Shadow) {
	if s.RadiusX <= 0 || s.RadiusY <= 0 || s.Opacity <= 0 {
		return
	}
	clr := fade(shadowColor, s.Opacity)
	// ellipse as horizontal strokes
	rows := int(math.Ceil(s.RadiusY))
	for i := -rows; i <= rows; i++ {
		dy := float64(i)
		ratio := dy / s.RadiusY
		if ratio*ratio > 1 {
			continue
		}
		half := s.RadiusX * math.Sqrt(1-ratio*ratio)
		y := float32(s.Center.Y() + dy)
		vector.StrokeLine(screen, float32(s.Center.X()-half), y, float32(s.Center.X()+half), y, 1, clr, true)
	}
}

func drawGlow(screen *ebiten.Image, gl scene.Glow, strength float64) {
	if gl.Radius <= 0 || gl.Opacity <= 0 {
		return
	}
	const rings = 6
	for i := 0; i < rings; i++ {
		r := gl.Radius * float64(rings-i) / rings
		clr := fade(glowColor, gl.Opacity*strength/rings)
		vector.DrawFilledCircle(screen, float32(gl.Center.X()), float32(gl.Center.Y()), float32(r), clr, true)
	}
}

// capsule draws a rounded bar of the given size centred on c.
func capsule(screen *ebiten.Image, c mgl64.Vec2, w, h, rotation float64, clr color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	thickness, length := w, h
	axis := mgl64.Vec2{0, 1}
	if w > h {
		thickness, length = h, w
		axis = mgl64.Vec2{1, 0}
	}
	axis = mgl64.Rotate2D(mgl64.DegToRad(rotation)).Mul2x1(axis)
	half := axis.Mul((length - thickness) / 2)
	a, b := c.Sub(half), c.Add(half)
	vector.StrokeLine(screen, float32(a.X()), float32(a.Y()), float32(b.X()), float32(b.Y()), float32(thickness), clr, true)
	r := float32(thickness / 2)
	vector.DrawFilledCircle(screen, float32(a.X()), float32(a.Y()), r, clr, true)
	vector.DrawFilledCircle(screen, float32(b.X()), float32(b.Y()), r, clr, true)
}

func drawBracket(screen *ebiten.Image, br scene.Bracket, opacity float64) {
	capsule(screen, br.Center, br.Width, br.Height, br.Rotation, fade(bodyColor, opacity))
}

func drawEye(screen *ebiten.Image, eye scene.Eye, opacity float64) {
	capsule(screen, eye.Center, eye.Width, eye.Height, eye.Rotation, fade(eyeColor, opacity))
}
