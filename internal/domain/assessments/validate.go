package assessments

import (
	"fmt"

	"github.com/asaskevich/govalidator"
)

// Rules tunes Validate. Zero values fall back to the defaults below.
type Rules struct {
	MinAnswers     int
	MinPhoneLength int
}

const (
	DefaultMinAnswers     = 3
	DefaultMinPhoneLength = 10
)

// MaxTypeLength is the widest assessment_type the repositories store.
const MaxTypeLength = 128

var typeTooLong = fmt.Sprintf("assessment_type must be at most %d characters", MaxTypeLength)

// CheckStorable rejects records no repository column can hold. It runs on
// every store, with or without Validate.
func CheckStorable(assessmentType string) error {
	if len(assessmentType) > MaxTypeLength {
		return &ValidationError{Problems: []string{typeTooLong}}
	}
	return nil
}

func (r Rules) withDefaults() Rules {
	if r.MinAnswers <= 0 {
		r.MinAnswers = DefaultMinAnswers
	}
	if r.MinPhoneLength <= 0 {
		r.MinPhoneLength = DefaultMinPhoneLength
	}
	return r
}

// Validate checks a sanitized record against the catalog before it is stored.
// All problems are reported at once in a *ValidationError.
func Validate(rec Record, catalog *Catalog, rules Rules) error {
	rules = rules.withDefaults()
	var problems []string
	unknown := false

	if rec.AssessmentType == "" {
		problems = append(problems, "assessment_type is required")
	} else if len(rec.AssessmentType) > MaxTypeLength {
		problems = append(problems, typeTooLong)
	} else if _, ok := catalog.Lookup(rec.AssessmentType); !ok {
		problems = append(problems, fmt.Sprintf("assessment_type %q is not in the catalog", rec.AssessmentType))
		unknown = true
	}
	if rec.ContactName == "" {
		problems = append(problems, "contact_name is required")
	}
	if rec.ContactEmail == "" {
		problems = append(problems, "contact_email is required")
	} else if !govalidator.IsEmail(rec.ContactEmail) {
		problems = append(problems, "contact_email is not a valid email address")
	}
	if rec.ContactPhone != "" && len(rec.ContactPhone) < rules.MinPhoneLength {
		problems = append(problems, fmt.Sprintf("contact_phone must have at least %d characters", rules.MinPhoneLength))
	}
	if len(rec.Answers) < rules.MinAnswers {
		problems = append(problems, fmt.Sprintf("at least %d answers are required, got %d", rules.MinAnswers, len(rec.Answers)))
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems, unknown: unknown}
}
