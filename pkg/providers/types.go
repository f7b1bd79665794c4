package providers

import "encoding/json"

// Message role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Content part type constants.
const (
	PartText     = "text"
	PartImageURL = "image_url"
)

// Finish reason constants.
const (
	FinishReasonStop      = "stop"
	FinishReasonLength    = "length"
	FinishReasonToolCalls = "tool_calls"
)

// ContentPart is one typed part of a multimodal message. Exactly one of
// Text or ImageURL is meaningful, selected by Type.
type ContentPart struct {
	Type     string
	Text     string
	ImageURL string
}

// Message is a single entry in a conversation. Content carries plain text;
// Parts, when non-empty, carries an ordered multimodal payload and takes
// precedence over Content during serialization. Part order is preserved
// exactly as supplied by the caller.
type Message struct {
	Role    string        `json:"role"`
	Content string        `json:"content"`
	Parts   []ContentPart `json:"-"`
}

// wirePart is the OpenAI-schema encoding of a content part.
type wirePart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"`
}

// MarshalJSON encodes Content as a plain string, or Parts as the typed
// part array, preserving caller-supplied order.
func (m Message) MarshalJSON() ([]byte, error) {
	if len(m.Parts) == 0 {
		type plain struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		return json.Marshal(plain{Role: m.Role, Content: m.Content})
	}

	parts := make([]wirePart, len(m.Parts))
	for i, p := range m.Parts {
		switch p.Type {
		case PartImageURL:
			parts[i] = wirePart{Type: PartImageURL, ImageURL: &wireImageURL{URL: p.ImageURL}}
		default:
			parts[i] = wirePart{Type: PartText, Text: p.Text}
		}
	}

	type multi struct {
		Role    string     `json:"role"`
		Content []wirePart `json:"content"`
	}
	return json.Marshal(multi{Role: m.Role, Content: parts})
}

// Tool is an OpenAI-schema tool definition, passed through to providers
// that support function calling.
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function for tool use.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatRequest is an OpenAI-schema chat-completion request. It is a value
// object: construct it, hand it to the dispatcher, and never mutate it
// afterwards. The message sequence is serialized in order, unmodified.
//
// Extensions entries are merged verbatim into the top level of the
// serialized body; this is how provider-specific fields ("provider" routing
// hints, "venice_parameters", "response_format" variants) pass through
// without the dispatcher knowing their shape.
type ChatRequest struct {
	Model          string         `json:"model"`
	Messages       []Message      `json:"messages"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	Temperature    float64        `json:"temperature,omitempty"`
	TopP           float64        `json:"top_p,omitempty"`
	Stop           []string       `json:"stop,omitempty"`
	Stream         bool           `json:"stream,omitempty"`
	Tools          []Tool         `json:"tools,omitempty"`
	ToolChoice     any            `json:"tool_choice,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`

	// Extensions is merged into the serialized body at the top level.
	// Keys colliding with schema fields are ignored in favor of the field.
	Extensions map[string]any `json:"-"`
}

// MarshalJSON merges Extensions into the standard schema fields.
func (r *ChatRequest) MarshalJSON() ([]byte, error) {
	type alias ChatRequest
	base, err := json.Marshal((*alias)(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extensions) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range r.Extensions {
		if _, taken := merged[key]; taken {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}

// TokenUsage reports token consumption for a completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatChoice is one completion choice in a non-streaming response.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse is an OpenAI-schema chat-completion response.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   TokenUsage   `json:"usage"`
}

// Text returns the first choice's content, or "".
func (r *ChatResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// StreamChunk is one normalized increment of a streaming completion.
// Delta carries the incremental text; FinishReason is set on the terminal
// chunk. Err is set instead when the stream failed mid-flight.
type StreamChunk struct {
	ID           string
	Provider     string
	Model        string
	Delta        string
	FinishReason string
	Err          error
}
