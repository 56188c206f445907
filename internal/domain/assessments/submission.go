package assessments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Field is one submitted form field, value already coerced to text
type Field struct {
	Key   string
	Value string
}

// Submission is an ordered, duplicate-free set of form fields.
// Order matters: later fields that sanitize to the same key overwrite earlier ones.
type Submission struct {
	fields []Field
	index  map[string]int
}

// NewSubmission builds a submission from key/value pairs.
// Pairs with odd length drop the trailing key.
func NewSubmission(pairs ...any) Submission {
	var s Submission
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Set(Text(pairs[i]), pairs[i+1])
	}
	return s
}

// Set adds or replaces a field. Replacing keeps the first position.
func (s *Submission) Set(key string, value any) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	v := Text(value)
	if i, ok := s.index[key]; ok {
		s.fields[i].Value = v
		return
	}
	s.index[key] = len(s.fields)
	s.fields = append(s.fields, Field{Key: key, Value: v})
}

// Get returns the value for key, empty text when absent
func (s Submission) Get(key string) string {
	if i, ok := s.index[key]; ok {
		return s.fields[i].Value
	}
	return ""
}

func (s Submission) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Fields returns the fields in submission order.
func (s Submission) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s Submission) Len() int { return len(s.fields) }

// Text coerces a primitive value to text.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return formatFloat(t, 64)
	case float32:
		return formatFloat(float64(t), 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// formatFloat switches to exponent form outside [1e-4, 1e16), so
// 1.5e21 stays "1.5e+21" rather than twenty-two digits.
func formatFloat(f float64, bits int) string {
	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, bits)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// ParseForm decodes an application/x-www-form-urlencoded body.
// Unlike url.ParseQuery it keeps the order fields were sent in.
func ParseForm(body string) (Submission, error) {
	var s Submission
	for body != "" {
		var pair string
		pair, body, _ = strings.Cut(body, "&")
		if pair == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return Submission{}, fmt.Errorf("decode form key %q: %w", rawKey, err)
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			return Submission{}, fmt.Errorf("decode form value for %q: %w", key, err)
		}
		s.Set(key, val)
	}
	return s, nil
}

// DecodeJSON decodes a flat JSON object, keeping key order.
// Nested objects and arrays are rejected.
func DecodeJSON(r io.Reader) (Submission, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Submission{}, fmt.Errorf("read submission: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Submission{}, fmt.Errorf("submission must be a JSON object")
	}

	var s Submission
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Submission{}, fmt.Errorf("read submission key: %w", err)
		}
		key, _ := tok.(string)

		tok, err = dec.Token()
		if err != nil {
			return Submission{}, fmt.Errorf("read value for %q: %w", key, err)
		}
		if _, ok := tok.(json.Delim); ok {
			return Submission{}, fmt.Errorf("field %q: nested values are not supported", key)
		}
		s.Set(key, tok)
	}
	if _, err := dec.Token(); err != nil {
		return Submission{}, fmt.Errorf("read submission end: %w", err)
	}
	return s, nil
}

// DecodeJSONBytes is DecodeJSON over a byte slice.
func DecodeJSONBytes(b []byte) (Submission, error) {
	return DecodeJSON(bytes.NewReader(b))
}
