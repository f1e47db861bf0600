package viewport

import "github.com/paulmach/orb"

// Event is a notification emitted by a map host.
type Event uint8

const (
	ViewportChanged Event = iota + 1 // the camera moved or zoomed
	Idle                             // the host finished a gesture
	Resized                          // the viewport size changed
)

func (e Event) String() string {
	switch e {
	case ViewportChanged:
		return "viewport-changed"
	case Idle:
		return "idle"
	case Resized:
		return "resized"
	default:
		return "<invalid event>"
	}
}

// Host is the external map the overlay is attached to.
type Host interface {
	// Camera returns the current view state.
	Camera() (Camera, error)
	// Subscribe registers `fn` for the event `e`. Calling
	// the returned function removes the registration.
	Subscribe(e Event, fn func()) (cancel func())
}

type listener struct {
	fn     func()
	active bool
}

// StaticHost is an in-memory Host, whose camera
// is only changed by explicit calls.
// Listeners are called synchronously, in subscription order.
type StaticHost struct {
	cam       Camera
	err       error
	listeners map[Event][]*listener
}

var _ Host = (*StaticHost)(nil)

// NewStaticHost returns a host showing `cam`.
func NewStaticHost(cam Camera) *StaticHost {
	return &StaticHost{cam: cam, listeners: make(map[Event][]*listener)}
}

// Camera implements Host.
func (h *StaticHost) Camera() (Camera, error) {
	if h.err != nil {
		return Camera{}, h.err
	}
	return h.cam, nil
}

// Subscribe implements Host.
func (h *StaticHost) Subscribe(e Event, fn func()) func() {
	l := &listener{fn: fn, active: true}
	h.listeners[e] = append(h.listeners[e], l)
	return func() {
		if !l.active {
			return
		}
		l.active = false
		ls := h.listeners[e]
		for i, other := range ls {
			if other == l {
				h.listeners[e] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
	}
}

// Listeners returns the number of active registrations for `e`.
func (h *StaticHost) Listeners(e Event) int { return len(h.listeners[e]) }

// Emit calls the listeners of `e`. A listener cancelled
// by an earlier one during the same emission is skipped.
func (h *StaticHost) Emit(e Event) {
	ls := append([]*listener(nil), h.listeners[e]...)
	for _, l := range ls {
		if l.active {
			l.fn()
		}
	}
}

// Move pans and zooms the camera, then emits ViewportChanged.
func (h *StaticHost) Move(center orb.Point, zoom float64) {
	h.cam.Center, h.cam.Zoom = center, zoom
	h.Emit(ViewportChanged)
}

// Resize changes the viewport size and emits Resized.
func (h *StaticHost) Resize(width, height int) {
	h.cam.Width, h.cam.Height = width, height
	h.Emit(Resized)
}

// Fail makes the following Camera calls return `err`.
// Passing nil restores the host.
func (h *StaticHost) Fail(err error) { h.err = err }
