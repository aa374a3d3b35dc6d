// Package broker turns resolved commands into previews and executions with
// identical decomposition, so what the user audits is exactly what runs.
package broker

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle of a submitted command preview.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusExecuted  Status = "Executed"
	StatusCancelled Status = "Cancelled"
)

// SubAction is one atomic step of a decomposed command, roughly one
// external capability call.
type SubAction struct {
	Type       string
	Target     string
	Summary    string
	Confidence float64
	// Call is the literal capability call the step corresponds to, empty
	// for model-only steps.
	Call string
}

// PreviewResult is the auditable decomposition of one resolved command.
// It is mutated only by status transitions and never reopened.
type PreviewResult struct {
	ID        string
	InputText string
	Actions   []SubAction
	Status    Status
	CreatedAt time.Time

	// Completed counts sub-actions applied during execution; Partial is set
	// when execution stopped before the last sub-action.
	Completed int
	Partial   bool

	steps []step
	docID string
}

// DisplayMode selects trace verbosity.
type DisplayMode int

const (
	Compact DisplayMode = iota
	Detailed
	Verbose
)

// Trace renders the ordered human-readable preview lines.
func (p *PreviewResult) Trace(mode DisplayMode) []string {
	lines := make([]string, 0, len(p.Actions))
	for i, a := range p.Actions {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s", i+1, a.Type)
		if a.Target != "" {
			fmt.Fprintf(&b, " [%s]", a.Target)
		}
		if mode >= Detailed && a.Summary != "" {
			fmt.Fprintf(&b, ": %s", a.Summary)
		}
		if mode >= Detailed {
			fmt.Fprintf(&b, " (confidence %.2f)", a.Confidence)
		}
		if mode >= Verbose && a.Call != "" {
			fmt.Fprintf(&b, "\n   -> %s", a.Call)
		}
		lines = append(lines, b.String())
	}
	return lines
}
