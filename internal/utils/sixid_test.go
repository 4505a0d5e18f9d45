package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSixIDStringRoundTrip(t *testing.T) {
	id := NewSixID()
	s := id.String()
	assert.Len(t, s, 10)

	parsed, err := ParseSixID(s)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestSixIDIsZero(t *testing.T) {
	var zero SixID
	assert.True(t, zero.IsZero())
	assert.False(t, NewSixID().IsZero())
}

func TestParseSixIDErrors(t *testing.T) {
	for _, s := range []string{"short", "this-is-way-too-long", "!!!!!!!!!!"} {
		_, err := ParseSixID(s)
		assert.Error(t, err, "input %q", s)
	}

	// The empty string parses to the zero ID.
	id, err := ParseSixID("")
	require.NoError(t, err)
	assert.True(t, id.IsZero())
}

func TestSixIDJSONRoundTrip(t *testing.T) {
	id := NewSixID()

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+id.String()+`"`, string(data))

	var decoded SixID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}

func TestSixIDUniqueness(t *testing.T) {
	seen := make(map[SixID]bool)
	for i := 0; i < 1000; i++ {
		id := NewSixID()
		assert.False(t, seen[id], "duplicate ID generated")
		seen[id] = true
	}
}
