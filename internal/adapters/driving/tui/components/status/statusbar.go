// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tutorforge/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tutorforge/internal/adapters/driving/tui/styles"
)

// State represents the conversion state for display.
type State string

const (
	StateRunning   State = "running"
	StateDone      State = "done"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Bar displays conversion status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	runID   string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateRunning,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	// The style's own padding counts towards the bar width.
	inner := s.width - s.styles.StatusBar.GetHorizontalFrameSize()
	padding := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	run := ""
	if s.runID != "" {
		run = "[" + s.runID + "] "
	}

	switch s.state {
	case StateDone:
		return s.styles.Success.Render(run + "Done")
	case StateFailed:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("%sError: %s", run, s.message))
		}
		return s.styles.Error.Render(run + "Error")
	case StateCancelled:
		return s.styles.Warning.Render(run + "Cancelled")
	case StateRunning:
		if s.message != "" {
			return s.styles.Normal.Render(run + s.message)
		}
	}
	return s.styles.Muted.Render(run + "Working...")
}

// renderRight renders keybinding hints while the conversion runs.
func (s *Bar) renderRight() string {
	if s.state != StateRunning {
		return ""
	}

	bindings := s.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the message shown next to the state.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetRunID sets the run identifier shown on the left.
func (s *Bar) SetRunID(id string) {
	s.runID = id
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
