package assessments

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Definition{
		{Name: "hair_assessment", Title: "Hair Loss Assessment", Questions: 5},
		{Name: "weight_loss", Questions: 6},
	})
	require.NoError(t, err)
	return c
}

func validRecord() Record {
	return Record{
		AssessmentType: "hair_assessment",
		ContactName:    "John Doe",
		ContactEmail:   "john@example.com",
		ContactPhone:   "+1 (555) 123-4567",
		Answers:        map[string]string{"q1": "male", "q2": "thinning", "q3": "recent"},
	}
}

func problemsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Problems
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(validRecord(), testCatalog(t), Rules{}))

	rec := validRecord()
	rec.ContactPhone = ""
	assert.NoError(t, Validate(rec, testCatalog(t), Rules{}), "phone is optional")
}

func TestValidate_EmptyRecord(t *testing.T) {
	err := Validate(Record{}, testCatalog(t), Rules{})

	assert.ElementsMatch(t, []string{
		"assessment_type is required",
		"contact_name is required",
		"contact_email is required",
		"at least 3 answers are required, got 0",
	}, problemsOf(t, err))
	assert.False(t, errors.Is(err, ErrUnknownAssessment))
}

func TestValidate_UnknownType(t *testing.T) {
	rec := validRecord()
	rec.AssessmentType = "tarot_reading"

	err := Validate(rec, testCatalog(t), Rules{})

	assert.True(t, errors.Is(err, ErrUnknownAssessment))
	assert.Len(t, problemsOf(t, err), 1)
	assert.Contains(t, err.Error(), `"tarot_reading"`)
}

func TestValidate_NilCatalogKnowsNothing(t *testing.T) {
	err := Validate(validRecord(), nil, Rules{})
	assert.True(t, errors.Is(err, ErrUnknownAssessment))
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Record)
		want   string
	}{
		{"bad email", func(r *Record) { r.ContactEmail = "not-an-email" }, "contact_email is not a valid email address"},
		{"short phone", func(r *Record) { r.ContactPhone = "555-1234" }, "contact_phone must have at least 10 characters"},
		{"few answers", func(r *Record) { delete(r.Answers, "q3") }, "at least 3 answers are required, got 2"},
		{"no name", func(r *Record) { r.ContactName = "" }, "contact_name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			rec.Answers = map[string]string{"q1": "male", "q2": "thinning", "q3": "recent"}
			tt.modify(&rec)

			assert.Equal(t, []string{tt.want}, problemsOf(t, Validate(rec, testCatalog(t), Rules{})))
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	rec := validRecord()
	rec.ContactPhone = "555-1234"
	rec.Answers = map[string]string{"q1": "male"}

	assert.NoError(t, Validate(rec, testCatalog(t), Rules{MinAnswers: 1, MinPhoneLength: 8}))
}

func TestValidate_TypeTooLong(t *testing.T) {
	rec := validRecord()
	rec.AssessmentType = strings.Repeat("a", MaxTypeLength+1)

	err := Validate(rec, testCatalog(t), Rules{})
	assert.Equal(t, []string{"assessment_type must be at most 128 characters"}, problemsOf(t, err))
	assert.False(t, errors.Is(err, ErrUnknownAssessment))
}

func TestCheckStorable(t *testing.T) {
	assert.NoError(t, CheckStorable(strings.Repeat("a", MaxTypeLength)))
	assert.NoError(t, CheckStorable(""))

	err := CheckStorable(strings.Repeat("a", MaxTypeLength+1))
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
