package httputil

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"quill/internal/domain"
)

func multipartRequest(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("title", "Hello"); err != nil {
		t.Fatal(err)
	}
	if filename != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="blogFile"; filename="`+filename+`"`)
		if contentType != "" {
			header.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/submit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseUpload(t *testing.T) {
	tests := []struct {
		name          string
		filename      string
		contentType   string
		wantMediaType string
	}{
		{"declared type kept", "post.txt", "text/plain; charset=utf-8", "text/plain; charset=utf-8"},
		{"octet-stream falls back to extension", "post.docx", "application/octet-stream", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"missing type falls back to extension", "POST.PDF", "", "application/pdf"},
		{"unknown extension keeps declared type", "post.exe", "application/octet-stream", "application/octet-stream"},
		{"declared type wins over extension", "post.pdf", "image/png", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, tt.filename, tt.contentType, []byte("content"))

			file, err := ParseUpload(httptest.NewRecorder(), req, "blogFile", 1024)
			if err != nil {
				t.Fatalf("ParseUpload() unexpected error: %v", err)
			}
			if file == nil {
				t.Fatal("ParseUpload() returned no file")
			}
			if file.MediaType != tt.wantMediaType {
				t.Errorf("MediaType = %q, want %q", file.MediaType, tt.wantMediaType)
			}
			if file.Filename != tt.filename || string(file.Content) != "content" {
				t.Errorf("file = %q/%q, want name and content preserved", file.Filename, file.Content)
			}
			if req.FormValue("title") != "Hello" {
				t.Errorf("form field not parsed")
			}
		})
	}
}

func TestParseUpload_MissingFile(t *testing.T) {
	req := multipartRequest(t, "", "", nil)

	file, err := ParseUpload(httptest.NewRecorder(), req, "blogFile", 1024)
	if err != nil || file != nil {
		t.Errorf("ParseUpload() = (%v, %v), want (nil, nil)", file, err)
	}
}

func TestParseUpload_TooLarge(t *testing.T) {
	req := multipartRequest(t, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 2048))

	_, err := ParseUpload(httptest.NewRecorder(), req, "blogFile", 1024)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ParseUpload() error = %v, want *ValidationError", err)
	}
	if _, ok := verr.Fields["blogFile"]; !ok {
		t.Errorf("Fields = %v, want blogFile entry", verr.Fields)
	}
}

func TestParseUpload_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	if _, err := ParseUpload(httptest.NewRecorder(), req, "blogFile", 1024); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ParseUpload() error = %v, want ErrValidation", err)
	}
}

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusServiceUnavailable, "checker down", map[string]interface{}{"message": "try later"})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, part := range []string{`"detail":"checker down"`, `"message":"try later"`, `"status":503`} {
		if !strings.Contains(body, part) {
			t.Errorf("body %s missing %s", body, part)
		}
	}
}
