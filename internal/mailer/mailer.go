// Package mailer defines the outgoing email interface and its SMTP
// implementation.
package mailer

import "context"

// Mailer sends a single plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
