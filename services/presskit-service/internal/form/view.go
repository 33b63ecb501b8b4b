package form

import "sync"

// View is the dialog hosting the form. It mirrors an external open flag;
// hiding it never cancels a request in flight.
type View struct {
	mu      sync.Mutex
	open    bool
	onClose func()
}

// NewView returns a closed view. onClose, if set, runs every time the view
// goes from open to closed.
func NewView(onClose func()) *View {
	return &View{onClose: onClose}
}

// Open shows the view.
func (v *View) Open() { v.Set(true) }

// Close hides the view.
func (v *View) Close() { v.Set(false) }

// Set follows the external boolean.
func (v *View) Set(open bool) {
	v.mu.Lock()
	wasOpen := v.open
	v.open = open
	v.mu.Unlock()

	if wasOpen && !open && v.onClose != nil {
		v.onClose()
	}
}

// IsOpen reports whether the view is shown.
func (v *View) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}
