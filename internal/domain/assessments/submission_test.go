package assessments

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(s Submission) []string {
	var keys []string
	for _, f := range s.Fields() {
		keys = append(keys, f.Key)
	}
	return keys
}

func TestSubmission_SetKeepsFirstPosition(t *testing.T) {
	var s Submission
	s.Set("b", "1")
	s.Set("a", "2")
	s.Set("b", "3")

	assert.Equal(t, []string{"b", "a"}, keysOf(s))
	assert.Equal(t, "3", s.Get("b"))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	assert.Equal(t, "", s.Get("c"))
}

func TestNewSubmission_OddPairs(t *testing.T) {
	s := NewSubmission("a", 1, "dangling")

	assert.Equal(t, []string{"a"}, keysOf(s))
	assert.Equal(t, "1", s.Get("a"))
}

func TestText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{false, "false"},
		{42, "42"},
		{int64(-7), "-7"},
		{1.5, "1.5"},
		{float64(3), "3"},
		{1.5e21, "1.5e+21"},
		{1e-5, "1e-05"},
		{123456.25, "123456.25"},
		{float32(0.5), "0.5"},
		{json.Number("01.50"), "01.50"},
		{[]byte("raw"), "raw"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Text(tt.in), "Text(%#v)", tt.in)
	}
}

func TestParseForm(t *testing.T) {
	s, err := ParseForm("contact_name=John+Doe&hair_assessment.q1=male&&empty=&flag&x=%21&contact_name=Jane")
	require.NoError(t, err)

	assert.Equal(t, []string{"contact_name", "hair_assessment.q1", "empty", "flag", "x"}, keysOf(s))
	assert.Equal(t, "Jane", s.Get("contact_name"))
	assert.Equal(t, "male", s.Get("hair_assessment.q1"))
	assert.Equal(t, "", s.Get("empty"))
	assert.True(t, s.Has("flag"))
	assert.Equal(t, "!", s.Get("x"))
}

func TestParseForm_EscapedKeys(t *testing.T) {
	s, err := ParseForm("a%5B%5D=1&dob%5Fmonth=02")
	require.NoError(t, err)

	assert.Equal(t, "1", s.Get("a[]"))
	assert.Equal(t, "02", s.Get("dob_month"))
}

func TestParseForm_BadEscape(t *testing.T) {
	_, err := ParseForm("ok=1&%zz=2")
	assert.Error(t, err)

	_, err = ParseForm("k=%G1")
	assert.Error(t, err)
}

func TestParseForm_Empty(t *testing.T) {
	s, err := ParseForm("")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestDecodeJSON(t *testing.T) {
	s, err := DecodeJSON(strings.NewReader(`{"z":"1","a":2,"b":true,"c":null,"d":1.50,"z":"last"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "b", "c", "d"}, keysOf(s))
	assert.Equal(t, "last", s.Get("z"))
	assert.Equal(t, "2", s.Get("a"))
	assert.Equal(t, "true", s.Get("b"))
	assert.Equal(t, "", s.Get("c"))
	assert.Equal(t, "1.50", s.Get("d"))
}

func TestDecodeJSON_Rejects(t *testing.T) {
	tests := map[string]string{
		"array":        `["a"]`,
		"scalar":       `"text"`,
		"nested":       `{"a":{"b":1}}`,
		"nested array": `{"a":[1,2]}`,
		"truncated":    `{"a":"1"`,
		"empty":        ``,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJSONBytes([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestDecodeJSON_FeedsSanitize(t *testing.T) {
	s, err := DecodeJSONBytes([]byte(`{
		"assessment_type": "weight_loss",
		"weight_loss.q1": 180,
		"weight_loss.q2": true,
		"weight_loss.q3": null
	}`))
	require.NoError(t, err)

	rec := Sanitize(s)
	assert.Equal(t, map[string]string{"q1": "180", "q2": "true", "q3": ""}, rec.Answers)
}
