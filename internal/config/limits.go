package config

const (
	// MaxTitleLength is the maximum length for document titles.
	// Limited to 200 to fit comfortably in listings and notifications.
	MaxTitleLength = 200

	// MaxDescriptionLength is the maximum length for document
	// descriptions. Descriptions are metadata, not content; file
	// attachments carry anything larger.
	MaxDescriptionLength = 4000

	// MaxProjectCodeLength is the maximum length for project codes.
	MaxProjectCodeLength = 40

	// MaxFileNameLength is the maximum length for attachment file names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and match common
	// filesystem limits.
	MaxFileNameLength = 255

	// MaxReasonLength is the maximum length for rejection, override,
	// and deletion reasons.
	MaxReasonLength = 1000
)
