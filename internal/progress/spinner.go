package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

const spinnerDelay = 100 * time.Millisecond

// Spinner shows an animated indicator while a step runs and a result line
// when it finishes. On non-TTY output only the result line is written.
type Spinner struct {
	w       io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols

	mu sync.Mutex
}

// NewSpinner creates a Spinner writing to w.
func NewSpinner(w io.Writer, caps TerminalCapabilities) *Spinner {
	return &Spinner{w: w, caps: caps, symbols: SelectSymbols(caps)}
}

// Run executes fn while the spinner shows message, then prints a success
// or failure line. fn's error is returned unchanged.
func (s *Spinner) Run(message string, fn func() error) error {
	if s == nil {
		return fn()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var sp *spinner.Spinner
	if s.caps.IsTTY {
		sp = spinner.New(spinner.CharSets[s.symbols.SpinnerSet], spinnerDelay,
			spinner.WithWriter(s.w),
			spinner.WithHiddenCursor(true),
		)
		sp.Suffix = " " + message
		sp.Start()
	}

	start := time.Now()
	err := fn()

	if sp != nil {
		sp.Stop()
	}

	elapsed := time.Since(start).Round(100 * time.Millisecond)
	if err != nil {
		fmt.Fprintf(s.w, "%s %s\n", s.symbols.Failure, message)
		return err
	}
	if s.caps.IsTTY && elapsed > 0 {
		fmt.Fprintf(s.w, "%s %s (%s)\n", s.symbols.Checkmark, message, elapsed)
		return nil
	}
	fmt.Fprintf(s.w, "%s %s\n", s.symbols.Checkmark, message)
	return nil
}
