package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Index
	}{
		{"number", `42`, "42"},
		{"string", `"abc-1"`, "abc-1"},
		{"zero", `0`, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var idx Index
			require.NoError(t, json.Unmarshal([]byte(tt.input), &idx))
			assert.Equal(t, tt.expected, idx)
		})
	}
}

func TestIndex_UnmarshalJSON_Invalid(t *testing.T) {
	var idx Index
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &idx))
}

func TestReference_DecodeWithOptionalIndex(t *testing.T) {
	var refs []Reference
	data := `[{"mainurl":"https://a.example","text":"A","index":7},{"mainurl":"https://b.example","text":"B"}]`
	require.NoError(t, json.Unmarshal([]byte(data), &refs))
	require.Len(t, refs, 2)
	require.NotNil(t, refs[0].Index)
	assert.Equal(t, Index("7"), *refs[0].Index)
	assert.Nil(t, refs[1].Index)
}

func TestStoryRecord_NullFields(t *testing.T) {
	record := StoryRecord{
		Title:      "t",
		Properties: []PropertyEntry{TextProperty(SymbolUser, "alice"), CountProperty(SymbolThumbsUp, 3, "https://news.example/1")},
	}

	out, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"firstline":null`)
	assert.Contains(t, string(out), `{"symbol":"User","value":"alice","url":null}`)
	assert.Contains(t, string(out), `{"symbol":"ThumbsOUp","value":3,"url":"https://news.example/1"}`)
}

func TestCountProperty_EmptyLink(t *testing.T) {
	entry := CountProperty(SymbolComments, 5, "")
	assert.Nil(t, entry.URL)
	assert.Equal(t, 5, entry.Value)
}
