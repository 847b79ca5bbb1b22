package notify

import (
	"context"
	"log/slog"
	"time"

	"quill/internal/domain/services"
	"quill/internal/metrics"
)

const defaultTimeout = 10 * time.Second

// Notifier renders author emails and hands them to a Sender.
// Failures are logged and counted, never returned.
type Notifier struct {
	sender    Sender
	templates *Templates
	metrics   *metrics.Metrics
	logger    *slog.Logger
	timeout   time.Duration
}

var _ services.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier. m may be nil.
func NewNotifier(sender Sender, templates *Templates, m *metrics.Metrics, logger *slog.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{
		sender:    sender,
		templates: templates,
		metrics:   m,
		logger:    logger,
		timeout:   timeout,
	}
}

func (n *Notifier) WordCountRejected(ctx context.Context, to services.Recipient, wordCount, minimum int) {
	n.deliver(ctx, KindWordCountRejected, to, TemplateData{
		AuthorName: to.AuthorName,
		WordCount:  wordCount,
		Minimum:    minimum,
	})
}

func (n *Notifier) PlagiarismRejected(ctx context.Context, to services.Recipient, similarity float64) {
	n.deliver(ctx, KindPlagiarismRejected, to, TemplateData{
		AuthorName: to.AuthorName,
		Similarity: similarity,
	})
}

func (n *Notifier) Published(ctx context.Context, to services.Recipient, publicURL string) {
	n.deliver(ctx, KindPublished, to, TemplateData{
		AuthorName: to.AuthorName,
		PublicURL:  publicURL,
	})
}

func (n *Notifier) deliver(ctx context.Context, kind string, to services.Recipient, data TemplateData) {
	// Delivery outlives a cancelled request but not the timeout
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	msg, err := n.templates.Render(kind, data)
	if err == nil {
		msg.To = to.Email
		err = n.sender.Send(ctx, msg)
	}

	n.metrics.ObserveNotification(kind, err)
	if err != nil {
		n.logger.Warn("failed to send notification",
			"kind", kind,
			"to", to.Email,
			"error", err,
		)
		return
	}
	n.logger.Debug("notification sent", "kind", kind, "to", to.Email)
}
