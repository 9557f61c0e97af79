// Package notify defines the handoff to the mail-delivery collaborator.
// The core builds a message and hands it off; rendering and SMTP delivery
// are the collaborator's problem.
package notify

import "context"

// Template identifiers understood by the mail collaborator.
const (
	TemplateComplianceReminder = "compliance_reminder"
)

// Message is one outbound notification request.
type Message struct {
	To         string            `json:"to"`
	Subject    string            `json:"subject"`
	TemplateID string            `json:"template_id"`
	Data       map[string]string `json:"data"`
}

// Dispatcher sends one message. Implementations report failure per call;
// callers decide whether a failure is fatal (it never is for reminders).
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}
