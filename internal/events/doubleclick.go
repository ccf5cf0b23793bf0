package events

import "time"

const (
	DefaultDoubleClickInterval = 400 * time.Millisecond
	DefaultDoubleClickDistance = 4
)

// DoubleClickDetector recognizes two presses of the same button close together in time and space.
type DoubleClickDetector struct {
	Interval time.Duration
	Distance float32 // In logical pixels.

	last       time.Time
	lastX      float32
	lastY      float32
	lastButton Button
	armed      bool
}

// NewDoubleClickDetector returns a DoubleClickDetector using the default interval and distance.
func NewDoubleClickDetector() *DoubleClickDetector {
	return &DoubleClickDetector{
		Interval: DefaultDoubleClickInterval,
		Distance: DefaultDoubleClickDistance,
	}
}

// Press records a button press at the given time and position, and returns true if it completes a double click.
// A third press right afterwards starts a new sequence rather than counting as another double click.
func (d *DoubleClickDetector) Press(now time.Time, x, y float32, button Button) bool {

	if d.armed && button == d.lastButton && now.Sub(d.last) <= d.Interval {
		dx, dy := x-d.lastX, y-d.lastY
		if dx*dx+dy*dy <= d.Distance*d.Distance {
			d.armed = false
			return true
		}
	}

	d.armed = true
	d.last = now
	d.lastX, d.lastY = x, y
	d.lastButton = button

	return false

}
