package plagiarism

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quill/internal/domain"
	"quill/internal/domain/services"
)

// RemoteChecker talks to an external plagiarism detection service.
//
//	POST {endpoint}/check  {"text": "..."}
//	200 {"isPlagiarized": true, "similarity": 62}
type RemoteChecker struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// checkResponse uses pointers so absent fields can be told from zero values
type checkResponse struct {
	IsPlagiarized *bool    `json:"isPlagiarized"`
	Similarity    *float64 `json:"similarity"`
}

var _ services.PlagiarismChecker = (*RemoteChecker)(nil)

// NewRemoteChecker creates a client whose calls are bounded by timeout.
func NewRemoteChecker(endpoint, apiKey string, timeout time.Duration) *RemoteChecker {
	return &RemoteChecker{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Check submits text for analysis. Transport failures, non-200 answers,
// undecodable bodies and replies without a verdict are reported as
// domain.ErrUnavailable.
func (c *RemoteChecker) Check(ctx context.Context, text string) (services.PlagiarismVerdict, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return services.PlagiarismVerdict{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/check", bytes.NewReader(body))
	if err != nil {
		return services.PlagiarismVerdict{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return services.PlagiarismVerdict{}, fmt.Errorf("%w: plagiarism service: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.PlagiarismVerdict{}, fmt.Errorf("%w: plagiarism service returned %s", domain.ErrUnavailable, resp.Status)
	}

	var result checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return services.PlagiarismVerdict{}, fmt.Errorf("%w: decode plagiarism response: %v", domain.ErrUnavailable, err)
	}
	if result.IsPlagiarized == nil {
		return services.PlagiarismVerdict{}, fmt.Errorf("%w: plagiarism response has no verdict", domain.ErrUnavailable)
	}

	verdict := services.PlagiarismVerdict{IsPlagiarized: *result.IsPlagiarized}
	if result.Similarity != nil {
		verdict.Similarity = *result.Similarity
	}
	if verdict.Similarity < 0 || verdict.Similarity > 100 {
		return services.PlagiarismVerdict{}, fmt.Errorf("%w: similarity %v out of range", domain.ErrUnavailable, verdict.Similarity)
	}

	return verdict, nil
}

func (c *RemoteChecker) Name() string {
	return "http"
}
