package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSubmission(t *testing.T) {
	sub, err := readSubmission(strings.NewReader(`{"assessment_type":"hair_assessment","hair_assessment.q1":"male"}`), false)
	require.NoError(t, err)
	assert.Equal(t, "male", sub.Get("hair_assessment.q1"))

	sub, err = readSubmission(strings.NewReader("assessment_type=hair_assessment&contact_name=Jo+Ann\n"), true)
	require.NoError(t, err)
	assert.Equal(t, "Jo Ann", sub.Get("contact_name"))

	_, err = readSubmission(strings.NewReader(`[1]`), false)
	assert.Error(t, err)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n    \"a\": 1\n}\n", buf.String())
}
