package cli

import (
	"io"

	"github.com/briandowns/spinner"

	"github.com/leadpanel/panelctl/internal/constants"
)

type spinnerState struct {
	spinner *spinner.Spinner
	enabled bool
}

// newSpinner creates the "Cargando..." indicator. It only draws when w is
// a terminal, so piped output and tests stay clean.
func newSpinner(w io.Writer, prefix string) *spinnerState {
	spin := spinner.New(spinner.CharSets[39], constants.SpinnerInterval, spinner.WithWriter(w))
	spin.Prefix = prefix
	return &spinnerState{spinner: spin, enabled: isTerminal(w)}
}

func (s *spinnerState) start() {
	if s.enabled {
		s.spinner.Start()
	}
}

func (s *spinnerState) stop() {
	if s.enabled && s.spinner.Active() {
		s.spinner.Stop()
	}
}

// withSpinner runs fn with the loading indicator shown.
func withSpinner(w io.Writer, fn func() error) error {
	s := newSpinner(w, "Cargando... ")
	s.start()
	defer s.stop()
	return fn()
}
