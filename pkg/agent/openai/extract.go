package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/openai/openai-go"

	"github.com/onkernel/profiles-demo/pkg/agent"
)

// Extract reads the current page and asks the model for structured data
// matching the instructions. The schema is open: whatever keys and value
// types the model produces are returned as-is.
func (h *handle) Extract(ctx context.Context, instructions string, schema agent.Schema) (map[string]any, error) {
	pageText, err := h.driver.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	resp, err := h.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(h.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractSystemPrompt),
			openai.UserMessage(buildExtractPrompt(instructions, string(schemaJSON), h.driver.URL(), pageText)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extraction returned no choices")
	}

	return decodeExtraction(resp.Choices[0].Message.Content)
}

func buildExtractPrompt(instructions, schemaJSON, url, pageText string) string {
	return fmt.Sprintf(`Extract data from the page below.

Instructions: %s

Target schema (JSON Schema): %s

Page URL: %s

Page content:
%s`, instructions, schemaJSON, url, pageText)
}

// decodeExtraction turns model output into the open mapping, stripping
// markdown fences and repairing malformed JSON before giving up.
func decodeExtraction(content string) (map[string]any, error) {
	cleaned := stripFences(content)
	if cleaned == "" {
		return nil, fmt.Errorf("extraction produced no output")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return nil, fmt.Errorf("extraction output is not valid JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			return nil, fmt.Errorf("extraction output is not valid JSON: %w", err)
		}
	}
	return data, nil
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
