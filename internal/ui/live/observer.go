package live

import (
	"context"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"ragdesk/internal/view"
)

// Controller runs the browser and accepts action updates from the caller.
type Controller struct {
	events  chan Event
	program *tea.Program
	done    chan struct{}
	err     error
	mu      sync.Mutex
	closed  bool
}

// Start launches the browser on stdout over state.
func Start(stdout io.Writer, state view.State, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 16)
	model := NewModel(state, events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, controller.err = program.Run()
		close(controller.done)
	}()
	return controller
}

// Run shows the browser until the user quits or ctx is cancelled.
func Run(ctx context.Context, stdout io.Writer, state view.State, opts Options) error {
	controller := Start(stdout, state, opts)
	select {
	case <-controller.done:
	case <-ctx.Done():
		controller.Close()
		<-controller.done
	}
	return controller.err
}

// Submitted tells the browser that action started.
func (c *Controller) Submitted(action view.Action) {
	c.send(Event{Kind: EventSubmitted, Action: action})
}

// Settled delivers the outcome of action.
func (c *Controller) Settled(action view.Action, result view.Result) {
	c.send(Event{Kind: EventSettled, Action: action, Result: result})
}

// Close stops the browser.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	c.mu.Unlock()
	c.program.Quit()
}

// Wait blocks until the browser has exited and returns its error.
func (c *Controller) Wait() error {
	if c == nil {
		return nil
	}
	<-c.done
	return c.err
}

// send enqueues an event, giving up once the browser has exited.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	case <-c.done:
	}
}
