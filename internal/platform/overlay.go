package platform

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/basicfont"
)

const (
	statusHold = 1.5 // Seconds the status line stays up after loading finishes.
	statusFade = 0.75
)

// Overlay draws the loading status, which fades out once loading is done, and an optional block of debug text.
type Overlay struct {
	ShowDebug bool

	status string
	alpha  float32
	hold   float32
	fade   *gween.Tween

	textImage *ebiten.Image
}

func NewOverlay() *Overlay {
	return &Overlay{alpha: 1}
}

// SetStatus shows message and keeps it up until Finish is called.
func (o *Overlay) SetStatus(message string) {
	o.status = message
	o.alpha = 1
	o.fade = nil
	o.hold = 0
}

// Finish shows message briefly and then fades it out. Calling it again while the message is already on its way
// out does nothing.
func (o *Overlay) Finish(message string) {
	if o.fade != nil && o.status == message {
		return
	}
	o.status = message
	o.alpha = 1
	o.hold = statusHold
	o.fade = gween.New(1, 0, statusFade, ease.OutQuad)
}

// Update advances the fade by dt seconds.
func (o *Overlay) Update(dt float32) {

	if o.fade == nil {
		return
	}

	if o.hold > 0 {
		o.hold -= dt
		return
	}

	alpha, done := o.fade.Update(dt)
	o.alpha = alpha
	if done {
		o.alpha = 0
	}

}

// StatusAlpha returns the current opacity of the status line.
func (o *Overlay) StatusAlpha() float32 {
	return o.alpha
}

func (o *Overlay) Status() string {
	return o.status
}

// Draw draws the status line in the bottom-left corner and, if ShowDebug is set, debug in the top-left.
func (o *Overlay) Draw(screen *ebiten.Image, debug string) {

	if o.ShowDebug && debug != "" {
		o.drawText(screen, debug, 0, 0, 1)
	}

	if o.status != "" && o.alpha > 0 {
		h := screen.Bounds().Dy()
		o.drawText(screen, o.status, 0, float64(h-24), o.alpha)
	}

}

// drawText draws txt with a one-pixel dark outline so it reads on any background.
func (o *Overlay) drawText(screen *ebiten.Image, txt string, x, y float64, alpha float32) {

	size := text.BoundString(basicfont.Face7x13, txt).Size()
	lines := strings.Count(txt, "\n") + 1

	if o.textImage == nil || size.X > o.textImage.Bounds().Dx() || size.Y+13 > o.textImage.Bounds().Dy() {
		if o.textImage != nil {
			o.textImage.Deallocate()
		}
		o.textImage = ebiten.NewImage(max(size.X, 1), max(size.Y, 13*lines)+13)
	}

	o.textImage.Clear()

	opt := &ebiten.DrawImageOptions{}
	opt.GeoM.Translate(0, 13)
	text.DrawWithOptions(o.textImage, txt, basicfont.Face7x13, opt)

	dr := &ebiten.DrawImageOptions{}
	dr.ColorScale.Scale(0, 0, 0, alpha)

	for oy := -1; oy < 2; oy++ {
		for ox := -1; ox < 2; ox++ {
			dr.GeoM.Reset()
			dr.GeoM.Translate(x+4+float64(ox), y+4+float64(oy))
			screen.DrawImage(o.textImage, dr)
		}
	}

	dr.ColorScale.Reset()
	dr.ColorScale.ScaleWithColor(color.NRGBA{230, 230, 230, 255})
	dr.ColorScale.ScaleAlpha(alpha)
	dr.GeoM.Reset()
	dr.GeoM.Translate(x+4, y+4)
	screen.DrawImage(o.textImage, dr)

}

// Dispose releases the Overlay's text texture.
func (o *Overlay) Dispose() {
	if o.textImage != nil {
		o.textImage.Deallocate()
		o.textImage = nil
	}
}
