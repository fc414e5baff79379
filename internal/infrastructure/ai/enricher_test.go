package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	jsonStr, err := extractJSON(`Here is the result:
{"title": "T", "summaryText": "S", "category": "MISSION"}
Hope that helps!`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "T", "summaryText": "S", "category": "MISSION"}`, jsonStr)
}

func TestExtractJSONBareObject(t *testing.T) {
	jsonStr, err := extractJSON(`{"title":"T"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"T"}`, jsonStr)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := extractJSON("sorry, I cannot help with that")
	assert.Error(t, err)
}

func TestExtractJSONReversedBraces(t *testing.T) {
	_, err := extractJSON("} nothing here {")
	assert.Error(t, err)
}
