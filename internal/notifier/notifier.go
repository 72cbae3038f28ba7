package notifier

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/metrics"
)

// Notifier is a fire-and-forget notification sink. It reports whether the
// message was delivered; callers never roll back on false.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) bool
}

var _ Notifier = (*Router)(nil)

// Router sends e-mail addresses to the email sink and every other recipient
// (Slack channel or user ids) to the chat sink. Either sink may be nil.
type Router struct {
	email   Notifier
	chat    Notifier
	metrics metrics.Metrics
}

// NewRouter creates a Router.
func NewRouter(email, chat Notifier, metrics metrics.Metrics) *Router {
	return &Router{
		email:   email,
		chat:    chat,
		metrics: metrics,
	}
}

// Notify routes the message by recipient shape and records the outcome.
func (r *Router) Notify(ctx context.Context, recipient, subject, body string) bool {
	target, kind := r.chat, "slack"
	if strings.Contains(recipient, "@") {
		target, kind = r.email, "email"
	}
	if target == nil {
		log.Warn("No notification backend configured for recipient", "kind", kind, "recipient", recipient, "subject", subject)
		r.metrics.IncNotificationsFailed()
		return false
	}

	if !target.Notify(ctx, recipient, subject, body) {
		r.metrics.IncNotificationsFailed()
		return false
	}
	r.metrics.IncNotificationsSent()
	return true
}
