package services

import "context"

// PlagiarismVerdict is the outcome of a plagiarism check.
// Similarity is a percentage in [0, 100].
type PlagiarismVerdict struct {
	IsPlagiarized bool    `json:"isPlagiarized"`
	Similarity    float64 `json:"similarity"`
}

// PlagiarismChecker inspects text for copied content.
// An unreachable or failing detector returns an error wrapping domain.ErrUnavailable.
type PlagiarismChecker interface {
	Check(ctx context.Context, text string) (PlagiarismVerdict, error)
	Name() string
}
