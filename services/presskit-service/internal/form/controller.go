package form

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// State is the lifecycle of one press-kit submission.
type State int

const (
	Idle State = iota
	Loading
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	DefaultDownloadURL = "/uploads/PressKit.zip"
	DownloadFilename   = "LOCOTEK-PressKit.zip"
	DefaultResetDelay  = 2 * time.Second

	MsgSubmitFailed = "Form submission failed"
	MsgGeneric      = "Something went wrong. Please try again."
)

// ErrBusy is returned by Submit while a submission is in flight or its
// success is still on display.
var ErrBusy = errors.New("submission already in progress")

// SubmitError carries the message shown to the user in the Error state.
type SubmitError struct {
	Message string
}

func (e *SubmitError) Error() string { return e.Message }

// Controller drives one email submission at a time: it posts the email,
// downloads the press kit on success and resets itself after a delay,
// closing its host view.
type Controller struct {
	client     *Client
	view       *View
	outDir     string
	resetDelay time.Duration

	mu        sync.Mutex
	state     State
	email     string
	errMsg    string
	saved     string
	resetDone chan struct{}
	listeners []func(State)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithResetDelay sets how long the Success state is shown.
func WithResetDelay(d time.Duration) ControllerOption {
	return func(c *Controller) { c.resetDelay = d }
}

// WithOutputDir sets where the downloaded archive is written.
func WithOutputDir(dir string) ControllerOption {
	return func(c *Controller) { c.outDir = dir }
}

// NewController creates an idle controller. view may be nil.
func NewController(client *Client, view *View, opts ...ControllerOption) *Controller {
	c := &Controller{
		client:     client,
		view:       view,
		outDir:     ".",
		resetDelay: DefaultResetDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn to be called after every state transition.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ErrorMessage is the message of the last failure, empty outside Error.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Email is the address currently in the form.
func (c *Controller) Email() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.email
}

// InputDisabled reports whether the input and submit control are locked.
func (c *Controller) InputDisabled() bool {
	return c.State() == Loading
}

// SavedPath is the location of the last downloaded archive.
func (c *Controller) SavedPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved
}

// Submit sends email and blocks until the endpoint answered. On success
// the archive is downloaded and a reset to Idle is scheduled; a download
// failure is returned but does not leave the Success state. Endpoint and
// transport failures move the controller to Error and return *SubmitError.
func (c *Controller) Submit(ctx context.Context, email string) error {
	c.mu.Lock()
	switch c.state {
	case Loading, Success:
		c.mu.Unlock()
		return ErrBusy
	case Error:
		c.setLocked(Idle)
	}
	c.email = email
	c.errMsg = ""
	c.setLocked(Loading)
	c.mu.Unlock()

	resp, ok, err := c.client.Submit(ctx, email)
	switch {
	case errors.Is(err, errUndecodable):
		return c.fail(MsgGeneric)
	case err != nil:
		return c.fail(err.Error())
	case !ok || !resp.Success:
		msg := resp.Error
		if msg == "" {
			msg = MsgSubmitFailed
		}
		return c.fail(msg)
	}

	ref := resp.DownloadURL
	if ref == "" {
		ref = DefaultDownloadURL
	}

	c.mu.Lock()
	c.resetDone = make(chan struct{})
	c.setLocked(Success)
	c.mu.Unlock()

	dlErr := c.download(ctx, ref)
	time.AfterFunc(c.resetDelay, c.reset)
	return dlErr
}

// WaitReset blocks until a scheduled reset after Success has happened.
func (c *Controller) WaitReset(ctx context.Context) error {
	c.mu.Lock()
	done := c.resetDone
	c.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) download(ctx context.Context, ref string) error {
	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(c.outDir, DownloadFilename)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := c.client.Download(ctx, ref, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	c.mu.Lock()
	c.saved = path
	c.mu.Unlock()
	return nil
}

func (c *Controller) fail(msg string) error {
	c.mu.Lock()
	c.errMsg = msg
	c.setLocked(Error)
	c.mu.Unlock()
	return &SubmitError{Message: msg}
}

func (c *Controller) reset() {
	c.mu.Lock()
	c.email = ""
	c.errMsg = ""
	c.setLocked(Idle)
	done := c.resetDone
	c.resetDone = nil
	c.mu.Unlock()

	if c.view != nil {
		c.view.Close()
	}
	if done != nil {
		close(done)
	}
}

// setLocked transitions and notifies listeners. Callers hold c.mu, so
// listeners must not call back into the controller.
func (c *Controller) setLocked(s State) {
	c.state = s
	for _, fn := range c.listeners {
		fn(s)
	}
}
