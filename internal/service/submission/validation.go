package submission

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/services"
)

// normalizeRequest returns a copy of req with trimmed text fields
func normalizeRequest(req *services.SubmitRequest) *services.SubmitRequest {
	if req == nil {
		return &services.SubmitRequest{}
	}
	normalized := *req
	normalized.AuthorName = strings.TrimSpace(req.AuthorName)
	normalized.Email = strings.TrimSpace(req.Email)
	normalized.Category = strings.TrimSpace(req.Category)
	normalized.Title = strings.TrimSpace(req.Title)
	return &normalized
}

// validateSubmitRequest checks required fields and the file presence.
// Field names in the returned ValidationError match the form field names.
func (s *submissionService) validateSubmitRequest(req *services.SubmitRequest) error {
	textRules := []validation.Rule{
		validation.Required,
		validation.RuneLength(1, config.MaxFieldLength),
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.AuthorName, textRules...),
		validation.Field(&req.Email, textRules...),
		validation.Field(&req.Category, textRules...),
		validation.Field(&req.Title, textRules...),
		validation.Field(&req.File, validation.Required, validation.By(validateFile)),
	)
	return domain.NewValidationError("invalid submission", err)
}

func validateFile(value interface{}) error {
	file, ok := value.(*services.UploadedFile)
	if !ok || file == nil {
		return nil
	}
	if strings.TrimSpace(file.Filename) == "" {
		return errors.New("must have a filename")
	}
	if len(file.Content) == 0 {
		return errors.New("cannot be empty")
	}
	return nil
}
