package document

import "github.com/inkpolish/inkpolish/internal/models"

// Submission thresholds.
const (
	MinTitleLength   = 5
	MinContentLength = 50
	MinContentWords  = 10
)

// Validation messages, one per rule.
const (
	ErrTitleTooShort   = "title too short"
	ErrContentTooShort = "content too short"
	ErrContentTooFew   = "content needs more words"
)

// Validate checks a draft against every submission rule and reports all
// violations at once. The title is measured raw, without trimming.
func Validate(title, content string) models.Validation {
	errs := []string{}

	if TextLength(title) < MinTitleLength {
		errs = append(errs, ErrTitleTooShort)
	}

	plain := StripTags(content)
	if TextLength(plain) < MinContentLength {
		errs = append(errs, ErrContentTooShort)
	}
	if WordCount(plain) < MinContentWords {
		errs = append(errs, ErrContentTooFew)
	}

	return models.Validation{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}
