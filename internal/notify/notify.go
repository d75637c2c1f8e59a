// Package notify delivers best-effort notifications about defect workflow
// events. Delivery failures are logged and never propagate into the
// lifecycle operations that triggered them.
package notify

import "fmt"

// TransitionEvent describes one accepted status change.
type TransitionEvent struct {
	DefectID   uint
	Title      string
	Project    string
	FromStatus string
	ToStatus   string
	Actor      string
}

// Notifier delivers workflow notifications to one channel.
type Notifier interface {
	DefectTransition(ev TransitionEvent)
	DailyDigest(summary string)
}

// Multi fans out to several notifiers.
type Multi []Notifier

func (m Multi) DefectTransition(ev TransitionEvent) {
	for _, n := range m {
		n.DefectTransition(ev)
	}
}

func (m Multi) DailyDigest(summary string) {
	for _, n := range m {
		n.DailyDigest(summary)
	}
}

// formatTransition renders a transition event as a single message line.
func formatTransition(ev TransitionEvent) string {
	return fmt.Sprintf("[%s] defect #%d %q: %s → %s (by %s)",
		ev.Project, ev.DefectID, ev.Title, ev.FromStatus, ev.ToStatus, ev.Actor)
}
