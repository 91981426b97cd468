// Package tui provides the terminal progress view for conversions.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/tutorforge/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Convert runs the conversion being displayed.
	Convert driving.ConvertService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Convert == nil {
		return ErrMissingConvertService
	}
	return nil
}
