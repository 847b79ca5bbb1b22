package submission

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
	"quill/internal/metrics"
	"quill/internal/repository/memory"
	"quill/internal/service/extract"
	"quill/internal/service/notify"
)

// ============================================================================
// FAKES
// ============================================================================

type fakeChecker struct {
	verdict services.PlagiarismVerdict
	err     error
	calls   int
}

func (c *fakeChecker) Check(ctx context.Context, text string) (services.PlagiarismVerdict, error) {
	c.calls++
	return c.verdict, c.err
}

func (c *fakeChecker) Name() string { return "fake" }

type notification struct {
	kind       string
	to         services.Recipient
	wordCount  int
	similarity float64
	publicURL  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) WordCountRejected(ctx context.Context, to services.Recipient, wordCount, minimum int) {
	n.record(notification{kind: notify.KindWordCountRejected, to: to, wordCount: wordCount})
}

func (n *recordingNotifier) PlagiarismRejected(ctx context.Context, to services.Recipient, similarity float64) {
	n.record(notification{kind: notify.KindPlagiarismRejected, to: to, similarity: similarity})
}

func (n *recordingNotifier) Published(ctx context.Context, to services.Recipient, publicURL string) {
	n.record(notification{kind: notify.KindPublished, to: to, publicURL: publicURL})
}

func (n *recordingNotifier) record(note notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
}

// countingSubmissions counts Create calls on top of a real repository
type countingSubmissions struct {
	repositories.SubmissionRepository
	creates int
}

func (r *countingSubmissions) Create(ctx context.Context, sub *models.Submission) error {
	r.creates++
	return r.SubmissionRepository.Create(ctx, sub)
}

type fakeArchiver struct {
	keys []string
	err  error
}

func (a *fakeArchiver) Archive(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return key, nil
}

type failingSender struct{}

func (failingSender) Send(ctx context.Context, msg notify.Message) error {
	return errors.New("smtp: connection refused")
}

type harness struct {
	svc         services.SubmissionService
	submissions *countingSubmissions
	published   repositories.PublishedRepository
	checker     *fakeChecker
	notifier    *recordingNotifier
	archiver    *fakeArchiver
	metrics     *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	h := &harness{
		submissions: &countingSubmissions{SubmissionRepository: memory.NewSubmissionRepository(store)},
		published:   memory.NewPublishedRepository(store),
		checker:     &fakeChecker{},
		notifier:    &recordingNotifier{},
		archiver:    &fakeArchiver{},
		metrics:     metrics.New(prometheus.NewRegistry()),
	}
	h.svc = NewService(Dependencies{
		Submissions: h.submissions,
		Published:   h.published,
		TxManager:   memory.NewTransactionManager(store),
		Extractor:   extract.NewRegistry(),
		Checker:     h.checker,
		Notifier:    h.notifier,
		Archiver:    h.archiver,
		Metrics:     h.metrics,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, Settings{
		MinWordCount:  800,
		PublicBaseURL: "https://blog.example.com/",
		PublicPath:    "/blogs/",
	})
	return h
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}

func request(content string) *services.SubmitRequest {
	return &services.SubmitRequest{
		AuthorName: "Ada Lovelace",
		Email:      "ada@example.com",
		Category:   "tech",
		Title:      "Notes on the Engine",
		File: &services.UploadedFile{
			Filename:  "notes.txt",
			MediaType: "text/plain",
			Content:   []byte(content),
		},
	}
}

// ============================================================================
// PIPELINE OUTCOMES
// ============================================================================

func TestSubmit_WordCountRejection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.svc.Submit(ctx, request(words(750)))
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	if result.Outcome != services.OutcomeRejectedWordCount {
		t.Fatalf("Outcome = %s, want %s", result.Outcome, services.OutcomeRejectedWordCount)
	}
	if result.WordCount != 750 || result.IsPlagiarized || result.Similarity != nil {
		t.Errorf("result = %+v, want 750 words and no plagiarism detail", result)
	}
	if h.checker.calls != 0 {
		t.Errorf("checker called %d times, want 0 for short texts", h.checker.calls)
	}

	stored, err := h.submissions.GetByID(ctx, result.Submission.ID)
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if stored.Status != models.StatusRejected || stored.RejectionReason != models.ReasonWordCount {
		t.Errorf("stored = %s/%q, want rejected for word count", stored.Status, stored.RejectionReason)
	}

	assertNoEntries(t, h)
	if len(h.notifier.sent) != 1 || h.notifier.sent[0].kind != notify.KindWordCountRejected {
		t.Errorf("notifications = %+v, want one word count rejection", h.notifier.sent)
	}
}

func TestSubmit_PlagiarismRejection(t *testing.T) {
	h := newHarness(t)
	h.checker.verdict = services.PlagiarismVerdict{IsPlagiarized: true, Similarity: 62}
	ctx := context.Background()

	result, err := h.svc.Submit(ctx, request(words(900)))
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	if result.Outcome != services.OutcomeRejectedPlagiarism {
		t.Fatalf("Outcome = %s, want %s", result.Outcome, services.OutcomeRejectedPlagiarism)
	}
	if !result.IsPlagiarized || result.Similarity == nil || *result.Similarity != 62 {
		t.Errorf("result = %+v, want plagiarized with similarity 62", result)
	}

	stored, _ := h.submissions.GetByID(ctx, result.Submission.ID)
	if stored.Status != models.StatusRejected || stored.RejectionReason != models.ReasonPlagiarism {
		t.Errorf("stored = %s/%q, want rejected for plagiarism", stored.Status, stored.RejectionReason)
	}
	if stored.Similarity == nil || *stored.Similarity != 62 {
		t.Errorf("stored similarity = %v, want 62", stored.Similarity)
	}

	assertNoEntries(t, h)
	if len(h.notifier.sent) != 1 || h.notifier.sent[0].similarity != 62 {
		t.Errorf("notifications = %+v, want one plagiarism rejection", h.notifier.sent)
	}
}

func TestSubmit_Published(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.svc.Submit(ctx, request(words(1000)))
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	if result.Outcome != services.OutcomePublished || result.Entry == nil {
		t.Fatalf("result = %+v, want published with an entry", result)
	}

	sub := result.Submission
	wantURL := "https://blog.example.com/blogs/" + sub.ID
	if result.Entry.PublicURL != wantURL {
		t.Errorf("PublicURL = %q, want %q", result.Entry.PublicURL, wantURL)
	}

	stored, _ := h.submissions.GetByID(ctx, sub.ID)
	if stored.Status != models.StatusPublished || stored.PublishedAt == nil {
		t.Errorf("stored = %+v, want published with timestamp", stored)
	}
	if stored.PublicURL != result.Entry.PublicURL {
		t.Errorf("submission URL %q != entry URL %q", stored.PublicURL, result.Entry.PublicURL)
	}
	if stored.FileKey != "submissions/"+sub.ID+"/notes.txt" {
		t.Errorf("FileKey = %q, want archive key", stored.FileKey)
	}

	listing, err := h.svc.ListPublished(ctx, models.ListOptions{})
	if err != nil {
		t.Fatalf("ListPublished() unexpected error: %v", err)
	}
	if len(listing) != 1 || listing[0].ID != result.Entry.ID || listing[0].WordCount != 1000 {
		t.Errorf("listing = %+v, want the new entry", listing)
	}

	// The id in the public URL resolves to the entry
	got, err := h.svc.GetPublished(ctx, sub.ID)
	if err != nil || got.ID != result.Entry.ID {
		t.Errorf("GetPublished(submission id) = (%v, %v), want the entry", got, err)
	}

	if len(h.notifier.sent) != 1 || h.notifier.sent[0].publicURL != wantURL {
		t.Errorf("notifications = %+v, want one confirmation with the URL", h.notifier.sent)
	}
}

func TestSubmit_OutcomeByWordCountAndVerdict(t *testing.T) {
	tests := []struct {
		name       string
		wordCount  int
		plagiarism bool
		want       services.Outcome
	}{
		{"empty", 0, false, services.OutcomeRejectedWordCount},
		{"one below", 799, false, services.OutcomeRejectedWordCount},
		{"below and plagiarized", 500, true, services.OutcomeRejectedWordCount},
		{"exactly minimum", 800, false, services.OutcomePublished},
		{"minimum and plagiarized", 800, true, services.OutcomeRejectedPlagiarism},
		{"long clean", 2500, false, services.OutcomePublished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.checker.verdict = services.PlagiarismVerdict{IsPlagiarized: tt.plagiarism, Similarity: 80}

			content := words(tt.wordCount)
			if tt.wordCount == 0 {
				content = " \n\t "
			}

			result, err := h.svc.Submit(context.Background(), request(content))
			if err != nil {
				t.Fatalf("Submit() unexpected error: %v", err)
			}
			if result.Outcome != tt.want {
				t.Errorf("Outcome = %s, want %s", result.Outcome, tt.want)
			}
			if result.WordCount != tt.wordCount {
				t.Errorf("WordCount = %d, want %d", result.WordCount, tt.wordCount)
			}

			entries, _ := h.published.List(context.Background(), models.ListOptions{})
			wantEntries := 0
			if tt.want == services.OutcomePublished {
				wantEntries = 1
			}
			if len(entries) != wantEntries {
				t.Errorf("published entries = %d, want %d", len(entries), wantEntries)
			}
		})
	}
}

// ============================================================================
// FAILURES BEFORE PERSISTENCE
// ============================================================================

func TestSubmit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(req *services.SubmitRequest)
		wantField string
	}{
		{"missing author", func(r *services.SubmitRequest) { r.AuthorName = "" }, "authorName"},
		{"blank email", func(r *services.SubmitRequest) { r.Email = "   " }, "email"},
		{"missing category", func(r *services.SubmitRequest) { r.Category = "" }, "category"},
		{"missing title", func(r *services.SubmitRequest) { r.Title = "" }, "title"},
		{"title too long", func(r *services.SubmitRequest) { r.Title = strings.Repeat("x", 300) }, "title"},
		{"missing file", func(r *services.SubmitRequest) { r.File = nil }, "blogFile"},
		{"empty file", func(r *services.SubmitRequest) { r.File.Content = nil }, "blogFile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := request(words(1000))
			tt.mutate(req)

			_, err := h.svc.Submit(context.Background(), req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("Submit() error = %v, want ErrValidation", err)
			}

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %T is not a *ValidationError", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("Fields = %v, want entry for %q", verr.Fields, tt.wantField)
			}
			if h.submissions.creates != 0 {
				t.Errorf("%d submissions created, want none", h.submissions.creates)
			}
		})
	}
}

func TestSubmit_UnsupportedFormat(t *testing.T) {
	h := newHarness(t)
	req := request(words(1000))
	req.File.MediaType = "image/png"

	_, err := h.svc.Submit(context.Background(), req)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("Submit() error = %v, want ErrUnsupportedFormat", err)
	}
	if h.submissions.creates != 0 || len(h.archiver.keys) != 0 {
		t.Errorf("nothing should be stored for unsupported uploads")
	}
}

func TestSubmit_ExtractionFailure(t *testing.T) {
	h := newHarness(t)
	req := request("not really a pdf")
	req.File.MediaType = services.MediaTypePDF

	_, err := h.svc.Submit(context.Background(), req)
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("Submit() error = %v, want ErrExtractionFailed", err)
	}
	if h.submissions.creates != 0 {
		t.Errorf("%d submissions created, want none", h.submissions.creates)
	}
}

// ============================================================================
// DEGRADED COLLABORATORS
// ============================================================================

func TestSubmit_CheckerUnavailable(t *testing.T) {
	h := newHarness(t)
	h.checker.err = errors.New("timeout")
	ctx := context.Background()

	_, err := h.svc.Submit(ctx, request(words(1000)))
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("Submit() error = %v, want ErrUnavailable", err)
	}
	if h.submissions.creates != 1 {
		t.Fatalf("%d submissions created, want the pending record", h.submissions.creates)
	}
	assertNoEntries(t, h)
	if len(h.notifier.sent) != 0 {
		t.Errorf("notifications = %+v, want none", h.notifier.sent)
	}
	if got := testutil.ToFloat64(h.metrics.Submissions.WithLabelValues(outcomeFailed)); got != 1 {
		t.Errorf("failed submissions = %v, want 1", got)
	}
}

func TestSubmit_NotificationFailureDoesNotPropagate(t *testing.T) {
	store := memory.NewStore()
	templates, err := notify.LoadTemplates()
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(Dependencies{
		Submissions: memory.NewSubmissionRepository(store),
		Published:   memory.NewPublishedRepository(store),
		TxManager:   memory.NewTransactionManager(store),
		Extractor:   extract.NewRegistry(),
		Checker:     &fakeChecker{},
		Notifier:    notify.NewNotifier(failingSender{}, templates, nil, logger, 0),
		Logger:      logger,
	}, Settings{MinWordCount: 800, PublicBaseURL: "https://blog.example.com", PublicPath: "/blogs"})

	for _, n := range []int{100, 1000} {
		result, err := svc.Submit(context.Background(), request(words(n)))
		if err != nil {
			t.Fatalf("Submit(%d words) error = %v, want email failure swallowed", n, err)
		}
		if result.Outcome == "" {
			t.Errorf("Submit(%d words) returned no outcome", n)
		}
	}
}

func TestSubmit_ArchiveFailureIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.archiver.err = errors.New("bucket missing")

	result, err := h.svc.Submit(context.Background(), request(words(1000)))
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	if result.Submission.FileKey != "" {
		t.Errorf("FileKey = %q, want empty after archive failure", result.Submission.FileKey)
	}
}

func TestSubmit_Metrics(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _ = h.svc.Submit(ctx, request(words(10)))
	_, _ = h.svc.Submit(ctx, request(words(1000)))
	_, _ = h.svc.Submit(ctx, request(words(1000)))

	if got := testutil.ToFloat64(h.metrics.Submissions.WithLabelValues(string(services.OutcomePublished))); got != 2 {
		t.Errorf("published = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.metrics.Submissions.WithLabelValues(string(services.OutcomeRejectedWordCount))); got != 1 {
		t.Errorf("rejected_word_count = %v, want 1", got)
	}
}

// ============================================================================
// LEGACY PUBLISH
// ============================================================================

func TestPublish_PendingSubmission(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// A checker outage leaves a pending submission behind
	h.checker.err = errors.New("down")
	_, _ = h.svc.Submit(ctx, request(words(1000)))
	h.checker.err = nil

	ids := pendingIDs(t, h)
	if len(ids) != 1 {
		t.Fatalf("pending submissions = %d, want 1", len(ids))
	}

	entry, err := h.svc.Publish(ctx, ids[0])
	if err != nil {
		t.Fatalf("Publish() unexpected error: %v", err)
	}
	if !strings.HasSuffix(entry.PublicURL, "/blogs/"+ids[0]) {
		t.Errorf("PublicURL = %q, want it to end with the submission id", entry.PublicURL)
	}

	// Terminal states are final
	if _, err := h.svc.Publish(ctx, ids[0]); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second Publish() error = %v, want ErrConflict", err)
	}

	entries, _ := h.published.List(ctx, models.ListOptions{})
	if len(entries) != 1 {
		t.Errorf("published entries = %d, want 1", len(entries))
	}
}

func TestPublish_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rejected, err := h.svc.Submit(ctx, request(words(10)))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		id   string
		want error
	}{
		{"rejected submission", rejected.Submission.ID, domain.ErrConflict},
		{"unknown id", "00000000-0000-0000-0000-000000000000", domain.ErrNotFound},
		{"blank id", "  ", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.svc.Publish(ctx, tt.id); !errors.Is(err, tt.want) {
				t.Errorf("Publish() error = %v, want %v", err, tt.want)
			}
		})
	}

	stored, _ := h.submissions.GetByID(ctx, rejected.Submission.ID)
	if stored.Status != models.StatusRejected {
		t.Errorf("Status = %s, want rejected to stay terminal", stored.Status)
	}
}

// ============================================================================
// QUERIES
// ============================================================================

func TestListPublished_InvalidOptions(t *testing.T) {
	h := newHarness(t)

	for _, opts := range []models.ListOptions{{Limit: -1}, {Limit: 101}, {Offset: -5}} {
		if _, err := h.svc.ListPublished(context.Background(), opts); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("ListPublished(%+v) error = %v, want ErrValidation", opts, err)
		}
	}
}

func TestGetPublished_NotFound(t *testing.T) {
	h := newHarness(t)

	if _, err := h.svc.GetPublished(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetPublished() error = %v, want ErrNotFound", err)
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func assertNoEntries(t *testing.T, h *harness) {
	t.Helper()
	entries, err := h.published.List(context.Background(), models.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("published entries = %d, want 0", len(entries))
	}
}

// pendingIDs returns ids archived by the harness whose submissions are still pending
func pendingIDs(t *testing.T, h *harness) []string {
	t.Helper()
	var ids []string
	for _, key := range h.archiver.keys {
		parts := strings.Split(key, "/")
		sub, err := h.submissions.GetByID(context.Background(), parts[1])
		if err != nil {
			t.Fatal(err)
		}
		if sub.Status == models.StatusPending {
			ids = append(ids, sub.ID)
		}
	}
	return ids
}
