package archive

import (
	"context"
	"path"
	"strings"

	"quill/internal/domain/services"
)

// ObjectKey returns the archive key for an upload: submissions/<id>/<filename>.
// Directory components of filename are dropped.
func ObjectKey(submissionID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return path.Join("submissions", submissionID, name)
}

// Disabled is the archiver used when no bucket is configured
type Disabled struct{}

var _ services.FileArchiver = Disabled{}

func (Disabled) Archive(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return "", nil
}
