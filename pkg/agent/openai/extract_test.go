package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeExtraction(t *testing.T) {
	data, err := decodeExtraction(`{"total": 42.5, "currency": "USD"}`)
	require.NoError(t, err)
	assert.Equal(t, 42.5, data["total"])
	assert.Equal(t, "USD", data["currency"])
}

func TestDecodeExtractionStripsFences(t *testing.T) {
	content := "```json\n{\"name\": \"Ada\"}\n```"
	data, err := decodeExtraction(content)
	require.NoError(t, err)
	assert.Equal(t, "Ada", data["name"])
}

func TestDecodeExtractionRepairsJSON(t *testing.T) {
	// Unquoted keys and a trailing comma.
	data, err := decodeExtraction(`{name: "Ada", verified: true,}`)
	require.NoError(t, err)
	assert.Equal(t, "Ada", data["name"])
	assert.Equal(t, true, data["verified"])
}

func TestDecodeExtractionEmpty(t *testing.T) {
	_, err := decodeExtraction("   ")
	assert.Error(t, err)
}

func TestDecodeExtractionGarbage(t *testing.T) {
	_, err := decodeExtraction("I could not find any data on this page, sorry!")
	assert.Error(t, err)
}

func TestBuildExtractPrompt(t *testing.T) {
	prompt := buildExtractPrompt("get the invoice total", `{"type":"object"}`, "https://x.test/inv", "Total: $42.50")
	assert.Contains(t, prompt, "get the invoice total")
	assert.Contains(t, prompt, `{"type":"object"}`)
	assert.Contains(t, prompt, "https://x.test/inv")
	assert.Contains(t, prompt, "Total: $42.50")
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}
