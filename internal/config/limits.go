package config

const (
	// DefaultMinWordCount is the publication threshold; submissions with
	// fewer words are rejected.
	DefaultMinWordCount = 800

	// DefaultMaxUploadBytes caps the size of an uploaded document (5 MiB).
	DefaultMaxUploadBytes = 5 << 20

	// MaxListLimit bounds the page size of published listings.
	MaxListLimit = 100

	// MaxFieldLength bounds author, email, category and title fields.
	// Matches the VARCHAR(255) columns of the submission tables.
	MaxFieldLength = 255
)
