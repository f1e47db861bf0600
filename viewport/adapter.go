package viewport

import "fmt"

// Adapter owns the current transform, derived from the host camera.
// Every camera query of the overlay goes through it.
type Adapter struct {
	current Transform
	valid   bool
}

// Recompute reads the host camera and replaces the current transform.
// On error the previous transform is kept and returned alongside the error.
func (a *Adapter) Recompute(h Host) (Transform, error) {
	cam, err := h.Camera()
	if err != nil {
		return a.current, fmt.Errorf("reading host camera: %w", err)
	}
	tr, err := NewTransform(cam)
	if err != nil {
		return a.current, err
	}
	a.current, a.valid = tr, true
	return tr, nil
}

// Current returns the last valid transform, and false
// if no camera has been read successfully yet.
func (a *Adapter) Current() (Transform, bool) { return a.current, a.valid }
