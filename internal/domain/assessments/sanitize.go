package assessments

import (
	"regexp"
	"strings"
)

// spaceClass is Unicode whitespace, the same set unicode.IsSpace and
// strings.TrimSpace use. RE2's \s alone is ASCII only.
const spaceClass = `\s\v\x{85}\p{Z}`

// Pre-compiled character filters
var (
	unsafeKeyRegex   = regexp.MustCompile(`[^a-z0-9_\-]`)
	unsafeNameRegex  = regexp.MustCompile(`[^a-zA-Z` + spaceClass + `\-'.]`)
	unsafePhoneRegex = regexp.MustCompile(`[^0-9+\-()` + spaceClass + `]`)
	whitespaceRegex  = regexp.MustCompile(`[` + spaceClass + `]+`)
)

const (
	questionMarker = "q"
	namespaceSep   = "."
)

// Fields of a record that are always present and never taken from the flat loop.
const (
	KeyAssessmentType = "assessment_type"
	KeyContactName    = "contact_name"
	KeyContactEmail   = "contact_email"
	KeyContactPhone   = "contact_phone"
	KeyAnswers        = "answers"
)

var flatPrefixes = []string{"contact_", "dob_"}
var namePrefixes = []string{"first_name", "last_name"}

// SanitizeKey lower-cases s and drops everything outside [a-z0-9_-].
func SanitizeKey(s string) string {
	return unsafeKeyRegex.ReplaceAllString(strings.ToLower(s), "")
}

// CleanName keeps letters, whitespace, hyphen, apostrophe and period,
// with whitespace runs (NBSP and other Unicode spaces included) collapsed
// to a single ASCII space.
func CleanName(s string) string {
	s = unsafeNameRegex.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// CleanPhone keeps digits, plus, hyphen, parentheses and whitespace.
func CleanPhone(s string) string {
	return unsafePhoneRegex.ReplaceAllString(s, "")
}

// CleanEmail only trims. Format checks belong to Validate.
func CleanEmail(s string) string {
	return strings.TrimSpace(s)
}

// NamespacePrefix is the key prefix answers of assessmentType carry.
// An empty type has no namespace.
func NamespacePrefix(assessmentType string) string {
	if assessmentType == "" {
		return ""
	}
	return assessmentType + namespaceSep + questionMarker
}

// AnswerKey maps a namespaced key to its answers key: the namespace is
// stripped and the question marker kept, hair_assessment.q1.month -> q1month.
func AnswerKey(prefix, key string) string {
	return questionMarker + SanitizeKey(strings.TrimPrefix(key, prefix))
}

// Sanitize cleans a submission into a storage-safe record.
// It never fails; missing fields come out as empty text.
func Sanitize(sub Submission) Record {
	rec := Record{
		AssessmentType: SanitizeKey(sub.Get(KeyAssessmentType)),
		ContactName:    CleanName(sub.Get(KeyContactName)),
		ContactEmail:   CleanEmail(sub.Get(KeyContactEmail)),
		ContactPhone:   CleanPhone(sub.Get(KeyContactPhone)),
		Answers:        map[string]string{},
		Extra:          map[string]string{},
	}

	prefix := NamespacePrefix(rec.AssessmentType)
	for _, f := range sub.fields {
		switch {
		case prefix != "" && strings.HasPrefix(f.Key, prefix):
			rec.Answers[AnswerKey(prefix, f.Key)] = strings.TrimSpace(f.Value)

		case hasAnyPrefix(f.Key, flatPrefixes):
			key := SanitizeKey(f.Key)
			if isCanonical(key) {
				continue
			}
			switch {
			case strings.Contains(key, "email"):
				rec.Extra[key] = CleanEmail(f.Value)
			case strings.Contains(key, "phone"):
				rec.Extra[key] = CleanPhone(f.Value)
			default:
				rec.Extra[key] = strings.TrimSpace(f.Value)
			}

		case hasAnyPrefix(f.Key, namePrefixes):
			rec.Extra[SanitizeKey(f.Key)] = strings.TrimSpace(f.Value)
		}
	}
	return rec
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isCanonical(key string) bool {
	switch key {
	case KeyAssessmentType, KeyContactName, KeyContactEmail, KeyContactPhone, KeyAnswers:
		return true
	}
	return false
}
