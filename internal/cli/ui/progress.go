package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Spinner represents a simple text-based spinner for indeterminate operations
type Spinner struct {
	writer   io.Writer
	message  string
	frames   []string
	interval time.Duration
	active   bool
	done     chan struct{}
	noColor  bool
	mu       sync.RWMutex // Protects message field
}

// SpinnerOptions configures spinner behavior
type SpinnerOptions struct {
	Message  string
	NoColor  bool
	Interval time.Duration // Default: 100ms
}

var defaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a new spinner
func NewSpinner(w io.Writer, opts SpinnerOptions) *Spinner {
	interval := opts.Interval
	if interval == 0 {
		interval = 100 * time.Millisecond
	}

	return &Spinner{
		writer:   w,
		message:  opts.Message,
		frames:   defaultFrames,
		interval: interval,
		done:     make(chan struct{}),
		noColor:  opts.NoColor,
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.active = true
	go s.animate()
}

// Stop stops the spinner and clears the line
func (s *Spinner) Stop() {
	if !s.active {
		return
	}
	s.active = false
	s.done <- struct{}{}
	// Clear the line
	fmt.Fprint(s.writer, "\r\033[K")
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(message string) {
	s.Stop()
	green := color.New(color.FgGreen, color.Bold)
	if s.noColor {
		green.DisableColor()
	}
	green.Fprintf(s.writer, "✓ %s\n", message)
}

// Error stops the spinner and shows an error message
func (s *Spinner) Error(message string) {
	s.Stop()
	red := color.New(color.FgRed, color.Bold)
	if s.noColor {
		red.DisableColor()
	}
	red.Fprintf(s.writer, "❌ %s\n", message)
}

// UpdateMessage changes the spinner message
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) animate() {
	frameIndex := 0
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	cyan := color.New(color.FgCyan)
	if s.noColor {
		cyan.DisableColor()
	}

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			frame := s.frames[frameIndex]
			s.mu.RLock()
			msg := s.message
			s.mu.RUnlock()
			cyan.Fprintf(s.writer, "\r%s %s", frame, msg)
			frameIndex = (frameIndex + 1) % len(s.frames)
		}
	}
}

// StepReporter shows a spinner for each step of a multi-step task and
// prints warnings once the running step has finished
type StepReporter struct {
	writer   io.Writer
	noColor  bool
	mu       sync.Mutex
	spinner  *Spinner
	deferred []string
}

// NewStepReporter creates a reporter writing to w
func NewStepReporter(w io.Writer, noColor bool) *StepReporter {
	return &StepReporter{writer: w, noColor: noColor}
}

// StepStarted starts a spinner for step
func (r *StepReporter) StepStarted(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner != nil {
		r.spinner.Stop()
	}
	r.spinner = NewSpinner(r.writer, SpinnerOptions{Message: step, NoColor: r.noColor})
	r.spinner.Start()
}

// StepFinished replaces the spinner with the step's outcome
func (r *StepReporter) StepFinished(step string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner != nil {
		if err != nil {
			r.spinner.Error(fmt.Sprintf("%s failed", step))
		} else {
			r.spinner.Success(step)
		}
		r.spinner = nil
	}
	for _, w := range r.deferred {
		fmt.Fprint(r.writer, w)
	}
	r.deferred = nil
}

// Warn prints a warning, or holds it until the running step finishes
func (r *StepReporter) Warn(message string, details ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := Warning(message, details, r.noColor)
	if r.spinner != nil {
		r.deferred = append(r.deferred, w)
		return
	}
	fmt.Fprint(r.writer, w)
}

// WithSpinner runs a function with a spinner indicator
func WithSpinner(w io.Writer, message string, noColor bool, fn func() error) error {
	spinner := NewSpinner(w, SpinnerOptions{
		Message: message,
		NoColor: noColor,
	})
	spinner.Start()
	defer spinner.Stop()

	err := fn()
	if err != nil {
		spinner.Error(fmt.Sprintf("%s failed", message))
		return err
	}

	spinner.Success(message)
	return nil
}
