package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"github.com/openai/openai-go"

	"github.com/onkernel/profiles-demo/pkg/agent"
)

// maxSteps bounds the tool loop so a confused model cannot run forever.
const maxSteps = 25

// Act runs the tool-calling loop until the model reports task completion.
func (h *handle) Act(ctx context.Context, task string) (*agent.Result, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(actSystemPrompt),
		openai.UserMessage(fmt.Sprintf("Current page: %s\n\nTask: %s", h.driver.URL(), task)),
	}

	for step := 0; step < maxSteps; step++ {
		resp, err := h.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(h.model),
			Messages: messages,
			Tools:    pageTools(),
		})
		if err != nil {
			return nil, fmt.Errorf("completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("completion returned no choices")
		}

		msg := resp.Choices[0].Message
		messages = append(messages, msg.ToParam())

		if len(msg.ToolCalls) == 0 {
			// A plain reply without tool calls means the model is done
			// narrating; treat it as the task outcome.
			return &agent.Result{Message: msg.Content, Success: true}, nil
		}

		for _, tc := range msg.ToolCalls {
			if tc.Function.Name == "task_complete" {
				return parseCompletion(tc.Function.Arguments)
			}

			output := h.executeTool(tc.Function.Name, tc.Function.Arguments)
			h.log.Debugf("tool %s -> %s", tc.Function.Name, truncate(output, 200))
			messages = append(messages, openai.ToolMessage(output, tc.ID))
		}
	}

	return nil, fmt.Errorf("task did not complete within %d steps", maxSteps)
}

// toolArgs is the union of arguments across the page tools.
type toolArgs struct {
	URL      string `json:"url"`
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

// executeTool runs one page tool. Tool errors are reported back to the
// model as text so it can adjust, not raised.
func (h *handle) executeTool(name, rawArgs string) string {
	args, err := parseArgs(rawArgs)
	if err != nil {
		return fmt.Sprintf("error: invalid arguments: %v", err)
	}

	switch name {
	case "navigate":
		if args.URL == "" {
			return "error: url is required"
		}
		if err := h.driver.Navigate(args.URL); err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return fmt.Sprintf("navigated to %s", h.driver.URL())

	case "click":
		if args.Selector == "" {
			return "error: selector is required"
		}
		if err := h.driver.Click(args.Selector); err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return fmt.Sprintf("clicked %s (now at %s)", args.Selector, h.driver.URL())

	case "fill":
		if args.Selector == "" {
			return "error: selector is required"
		}
		if err := h.driver.Fill(args.Selector, args.Value); err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return fmt.Sprintf("filled %s", args.Selector)

	case "read_page":
		text, err := h.driver.Text()
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return text

	default:
		return fmt.Sprintf("error: unknown tool %q", name)
	}
}

// parseArgs decodes tool-call arguments, repairing malformed JSON the
// model occasionally emits before giving up.
func parseArgs(raw string) (*toolArgs, error) {
	if raw == "" {
		return &toolArgs{}, nil
	}

	var args toolArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(repaired), &args); err != nil {
			return nil, err
		}
	}
	return &args, nil
}

type completionArgs struct {
	Result  string `json:"result"`
	Success bool   `json:"success"`
}

func parseCompletion(raw string) (*agent.Result, error) {
	var args completionArgs
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			repaired, repairErr := jsonrepair.JSONRepair(raw)
			if repairErr != nil {
				return nil, fmt.Errorf("failed to parse completion arguments: %w", err)
			}
			if err := json.Unmarshal([]byte(repaired), &args); err != nil {
				return nil, fmt.Errorf("failed to parse completion arguments: %w", err)
			}
		}
	}

	if !args.Success {
		return nil, fmt.Errorf("agent reported failure: %s", args.Result)
	}
	return &agent.Result{Message: args.Result, Success: true}, nil
}

func pageTools() []openai.ChatCompletionToolParam {
	return []openai.ChatCompletionToolParam{
		functionTool("navigate", "Navigate the browser to a URL.", map[string]any{
			"url": map[string]any{"type": "string", "description": "Absolute URL to open"},
		}, []string{"url"}),
		functionTool("click", "Click the element matching a CSS selector.", map[string]any{
			"selector": map[string]any{"type": "string", "description": "CSS selector of the element to click"},
		}, []string{"selector"}),
		functionTool("fill", "Fill an input element with a value.", map[string]any{
			"selector": map[string]any{"type": "string", "description": "CSS selector of the input"},
			"value":    map[string]any{"type": "string", "description": "Text to type"},
		}, []string{"selector", "value"}),
		functionTool("read_page", "Read the visible text of the current page.", map[string]any{}, nil),
		functionTool("task_complete", "Report that the task is finished.", map[string]any{
			"result":  map[string]any{"type": "string", "description": "What was accomplished, or why the task failed"},
			"success": map[string]any{"type": "boolean", "description": "Whether the task succeeded"},
		}, []string{"result", "success"}),
	}
}

func functionTool(name, description string, properties map[string]any, required []string) openai.ChatCompletionToolParam {
	params := openai.FunctionParameters{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        name,
			Description: openai.String(description),
			Parameters:  params,
		},
	}
}
