package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_RawObject(t *testing.T) {
	var out struct {
		Score float64 `json:"score"`
	}
	err := DecodeJSON(`{"score": 85}`, &out)
	require.NoError(t, err)
	assert.Equal(t, 85.0, out.Score)
}

func TestDecodeJSON_FencedObject(t *testing.T) {
	var out struct {
		Summary string `json:"summary"`
	}
	err := DecodeJSON("```json\n{\"summary\": \"ok\"}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Summary)
}

func TestDecodeJSON_ProseAroundObject(t *testing.T) {
	var out struct {
		Risk string `json:"risk"`
	}
	err := DecodeJSON("Here is the result:\n{\"risk\": \"LOW\"}\nHope that helps.", &out)
	require.NoError(t, err)
	assert.Equal(t, "LOW", out.Risk)
}

func TestDecodeJSON_NotJSON(t *testing.T) {
	var out map[string]any
	err := DecodeJSON("no json here", &out)
	assert.Error(t, err)
}
