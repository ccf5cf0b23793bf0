// Package events is a small listener registry for input and viewport events. Handlers are registered per event
// kind and can be removed individually.
package events

import (
	"sync"
)

// Kind identifies the type of an Event.
type Kind int

const (
	PointerMove Kind = iota
	PointerDown
	PointerUp
	Wheel
	Resize
	DoubleClick
)

func (k Kind) String() string {
	switch k {
	case PointerMove:
		return "pointermove"
	case PointerDown:
		return "pointerdown"
	case PointerUp:
		return "pointerup"
	case Wheel:
		return "wheel"
	case Resize:
		return "resize"
	case DoubleClick:
		return "dblclick"
	}
	return "unknown"
}

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Event is an input or viewport event. Which fields are meaningful depends on Kind.
type Event struct {
	Kind Kind

	// Pointer position in logical pixels, for pointer and double-click events.
	X, Y   float32
	Button Button

	// Scroll amounts for Wheel events; positive DeltaY scrolls up.
	DeltaX, DeltaY float32

	// Viewport size in logical pixels and the device pixel ratio, for Resize events.
	Width, Height     int
	DeviceScaleFactor float64
}

// Handler receives events.
type Handler func(Event)

// Listener is a registration returned by Bus.On; pass it to Bus.Off to remove the handler.
type Listener struct {
	kind Kind
	id   uint64
}

type entry struct {
	id      uint64
	handler Handler
}

// Bus dispatches Events to the handlers registered for their Kind.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[Kind][]entry
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: map[Kind][]entry{}}
}

// On registers handler for events of the given kind.
func (bus *Bus) On(kind Kind, handler Handler) Listener {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.nextID++
	bus.handlers[kind] = append(bus.handlers[kind], entry{id: bus.nextID, handler: handler})
	return Listener{kind: kind, id: bus.nextID}
}

// Off removes a handler. Removing a handler that was already removed does nothing.
func (bus *Bus) Off(listener Listener) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	list := bus.handlers[listener.kind]
	for i, e := range list {
		if e.id == listener.id {
			bus.handlers[listener.kind] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(bus.handlers[listener.kind]) == 0 {
		delete(bus.handlers, listener.kind)
	}
}

// Emit calls every handler registered for the event's kind, in registration order. Handlers may add or remove
// listeners; such changes take effect from the next Emit.
func (bus *Bus) Emit(event Event) {
	bus.mu.Lock()
	list := append([]entry(nil), bus.handlers[event.Kind]...)
	bus.mu.Unlock()
	for _, e := range list {
		e.handler(event)
	}
}

// Len returns the number of registered handlers.
func (bus *Bus) Len() int {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	n := 0
	for _, list := range bus.handlers {
		n += len(list)
	}
	return n
}

// LenKind returns the number of handlers registered for kind.
func (bus *Bus) LenKind(kind Kind) int {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return len(bus.handlers[kind])
}
