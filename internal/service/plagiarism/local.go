package plagiarism

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"quill/internal/domain"
	"quill/internal/domain/services"
)

// shingleSize is the number of consecutive words per fingerprint
const shingleSize = 5

// CorpusSource provides the texts new submissions are compared against
type CorpusSource interface {
	Contents(ctx context.Context) ([]string, error)
}

// LocalChecker compares text against already published content using word
// shingles. Similarity is the share of the candidate's shingles found in the
// closest corpus document.
type LocalChecker struct {
	corpus    CorpusSource
	threshold float64
}

var _ services.PlagiarismChecker = (*LocalChecker)(nil)

// NewLocalChecker creates a checker flagging similarity >= threshold (percent).
func NewLocalChecker(corpus CorpusSource, threshold float64) *LocalChecker {
	return &LocalChecker{
		corpus:    corpus,
		threshold: threshold,
	}
}

// Check scores text against every corpus document and keeps the highest score.
func (c *LocalChecker) Check(ctx context.Context, text string) (services.PlagiarismVerdict, error) {
	candidate := shingles(text)
	if len(candidate) == 0 {
		return services.PlagiarismVerdict{}, nil
	}

	docs, err := c.corpus.Contents(ctx)
	if err != nil {
		return services.PlagiarismVerdict{}, fmt.Errorf("%w: load corpus: %v", domain.ErrUnavailable, err)
	}

	best := 0.0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return services.PlagiarismVerdict{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		if score := containment(candidate, shingles(doc)); score > best {
			best = score
		}
	}

	similarity := math.Round(best*100*100) / 100
	return services.PlagiarismVerdict{
		IsPlagiarized: similarity >= c.threshold && similarity > 0,
		Similarity:    similarity,
	}, nil
}

func (c *LocalChecker) Name() string {
	return "local"
}

// containment returns |a ∩ b| / |a|
func containment(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for s := range a {
		if _, ok := b[s]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a))
}

// shingles returns the set of normalized word n-grams of text.
// Texts shorter than shingleSize produce a single shingle.
func shingles(text string) map[string]struct{} {
	words := normalizeWords(text)
	set := make(map[string]struct{})
	if len(words) == 0 {
		return set
	}
	if len(words) < shingleSize {
		set[strings.Join(words, " ")] = struct{}{}
		return set
	}
	for i := 0; i+shingleSize <= len(words); i++ {
		set[strings.Join(words[i:i+shingleSize], " ")] = struct{}{}
	}
	return set
}

// normalizeWords lowercases text and drops everything but letters and digits
func normalizeWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return fields
}
