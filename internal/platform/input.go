package platform

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/solarlune/donutfield/internal/events"
)

// inputSource is the slice of ebitengine's input API the poller reads.
type inputSource interface {
	CursorPosition() (x, y int)
	Wheel() (dx, dy float64)
	JustPressed(button ebiten.MouseButton) bool
	JustReleased(button ebiten.MouseButton) bool
}

type ebitenInput struct{}

func (ebitenInput) CursorPosition() (int, int) { return ebiten.CursorPosition() }
func (ebitenInput) Wheel() (float64, float64) { return ebiten.Wheel() }

func (ebitenInput) JustPressed(button ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustPressed(button)
}

func (ebitenInput) JustReleased(button ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustReleased(button)
}

var buttons = []struct {
	ebiten ebiten.MouseButton
	button events.Button
}{
	{ebiten.MouseButtonLeft, events.ButtonLeft},
	{ebiten.MouseButtonRight, events.ButtonRight},
	{ebiten.MouseButtonMiddle, events.ButtonMiddle},
}

// InputPoller turns ebitengine's polled mouse state into events on a Bus.
type InputPoller struct {
	bus         *events.Bus
	source      inputSource
	doubleClick *events.DoubleClickDetector

	lastX, lastY float32
	seen         bool
}

// NewInputPoller creates an InputPoller emitting onto bus.
func NewInputPoller(bus *events.Bus) *InputPoller {
	return &InputPoller{
		bus:         bus,
		source:      ebitenInput{},
		doubleClick: events.NewDoubleClickDetector(),
	}
}

// Poll reads the current input state and emits the matching events. pixelRatio converts the cursor position from
// screen pixels to logical pixels.
func (p *InputPoller) Poll(now time.Time, pixelRatio float64) {

	if pixelRatio <= 0 {
		pixelRatio = 1
	}

	cx, cy := p.source.CursorPosition()
	x, y := float32(float64(cx)/pixelRatio), float32(float64(cy)/pixelRatio)

	if !p.seen || x != p.lastX || y != p.lastY {
		p.bus.Emit(events.Event{Kind: events.PointerMove, X: x, Y: y})
		p.lastX, p.lastY = x, y
		p.seen = true
	}

	for _, b := range buttons {

		if p.source.JustPressed(b.ebiten) {
			p.bus.Emit(events.Event{Kind: events.PointerDown, X: x, Y: y, Button: b.button})
			if b.button == events.ButtonLeft && p.doubleClick.Press(now, x, y, b.button) {
				p.bus.Emit(events.Event{Kind: events.DoubleClick, X: x, Y: y, Button: b.button})
			}
		}

		if p.source.JustReleased(b.ebiten) {
			p.bus.Emit(events.Event{Kind: events.PointerUp, X: x, Y: y, Button: b.button})
		}

	}

	if dx, dy := p.source.Wheel(); dx != 0 || dy != 0 {
		p.bus.Emit(events.Event{Kind: events.Wheel, X: x, Y: y, DeltaX: float32(dx), DeltaY: float32(dy)})
	}

}
