package services

import "context"

// Recipient identifies who a notification is addressed to
type Recipient struct {
	Email      string
	AuthorName string
}

// Notifier informs authors about the outcome of their submission.
//
// Delivery is best-effort: implementations log failures and never report them,
// so callers can invoke these on any path without affecting their result.
type Notifier interface {
	WordCountRejected(ctx context.Context, to Recipient, wordCount, minimum int)
	PlagiarismRejected(ctx context.Context, to Recipient, similarity float64)
	Published(ctx context.Context, to Recipient, publicURL string)
}
