package archive

import (
	"context"
	"testing"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"plain name", "post.pdf", "submissions/abc/post.pdf"},
		{"unix path", "../../etc/passwd", "submissions/abc/passwd"},
		{"windows path", `C:\Users\me\post.docx`, "submissions/abc/post.docx"},
		{"empty", "", "submissions/abc/upload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectKey("abc", tt.filename); got != tt.want {
				t.Errorf("ObjectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisabled_Archive(t *testing.T) {
	key, err := Disabled{}.Archive(context.Background(), "submissions/abc/post.pdf", "application/pdf", []byte("x"))
	if err != nil || key != "" {
		t.Errorf("Archive() = (%q, %v), want empty key and no error", key, err)
	}
}
