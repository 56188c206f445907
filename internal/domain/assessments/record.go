package assessments

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Record is a sanitized submission. Extra holds the flat contact, dob
// and name fields; on the wire they sit at the top level next to the
// canonical fields.
type Record struct {
	AssessmentType string
	ContactName    string
	ContactEmail   string
	ContactPhone   string
	Answers        map[string]string
	Extra          map[string]string
}

// Value looks up a top-level field by its wire name.
func (r Record) Value(key string) (string, bool) {
	switch key {
	case KeyAssessmentType:
		return r.AssessmentType, true
	case KeyContactName:
		return r.ContactName, true
	case KeyContactEmail:
		return r.ContactEmail, true
	case KeyContactPhone:
		return r.ContactPhone, true
	}
	v, ok := r.Extra[key]
	return v, ok
}

// ExtraKeys returns the flat field names in sorted order.
func (r Record) ExtraKeys() []string {
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AnswerKeys returns the answer keys in sorted order.
func (r Record) AnswerKeys() []string {
	keys := make([]string, 0, len(r.Answers))
	for k := range r.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Submission re-expresses the record as a form submission. Answers are
// put back under the record's namespace, so Sanitize(r.Submission())
// reproduces r.
func (r Record) Submission() Submission {
	s := NewSubmission(
		KeyAssessmentType, r.AssessmentType,
		KeyContactName, r.ContactName,
		KeyContactEmail, r.ContactEmail,
		KeyContactPhone, r.ContactPhone,
	)
	for _, k := range r.ExtraKeys() {
		s.Set(k, r.Extra[k])
	}
	if r.AssessmentType != "" {
		ns := r.AssessmentType + namespaceSep
		for _, k := range r.AnswerKeys() {
			s.Set(ns+k, r.Answers[k])
		}
	}
	return s
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+5)
	for k, v := range r.Extra {
		out[k] = v
	}
	answers := r.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	out[KeyAssessmentType] = r.AssessmentType
	out[KeyContactName] = r.ContactName
	out[KeyContactEmail] = r.ContactEmail
	out[KeyContactPhone] = r.ContactPhone
	out[KeyAnswers] = answers
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Record{Answers: map[string]string{}, Extra: map[string]string{}}
	for k, v := range raw {
		if k == KeyAnswers {
			if err := json.Unmarshal(v, &r.Answers); err != nil {
				return fmt.Errorf("record answers: %w", err)
			}
			if r.Answers == nil {
				r.Answers = map[string]string{}
			}
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("record field %q: %w", k, err)
		}
		switch k {
		case KeyAssessmentType:
			r.AssessmentType = s
		case KeyContactName:
			r.ContactName = s
		case KeyContactEmail:
			r.ContactEmail = s
		case KeyContactPhone:
			r.ContactPhone = s
		default:
			r.Extra[k] = s
		}
	}
	return nil
}
