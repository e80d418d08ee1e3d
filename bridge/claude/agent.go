// Package claude implements an in-process agent on the Anthropic Messages
// API.
//
// Agent is a volumetric.Bridge: every action phrase becomes a user turn in
// the session's transcript. The model answers by calling exactly one tool,
// and each registered template is offered as a tool named by its key with
// the template's props schema as input. The tool call is turned into a
// NavigationRequest and handed to the Navigator, closing the loop.
package claude

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/youssefsiam38/volumetric"
)

// Defaults.
const (
	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 2048
	DefaultMaxTurns  = 20
)

// DefaultSystemPrompt tells the model how the UI works.
const DefaultSystemPrompt = `You drive a visual interface. Each user message is either something the user said or a phrase produced by clicking an element on the screen. Answer every message by calling exactly one tool: each tool shows a template, and its input is the template's props. Fill props with concrete content; every clickable element should carry a short phrase in the user's voice describing what they want next.`

// ErrNoToolCall is returned when the model answered without choosing a
// template.
var ErrNoToolCall = errors.New("model did not call a template tool")

// MessagesClient is the part of the Anthropic client the agent uses.
// &client.Messages satisfies it.
type MessagesClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Config holds agent configuration.
type Config struct {
	// Model name. Default: DefaultModel
	Model string

	// MaxTokens per response. Default: DefaultMaxTokens
	MaxTokens int64

	// SystemPrompt overrides DefaultSystemPrompt
	SystemPrompt string

	// MaxTurns bounds the per-session transcript. Older exchanges are
	// forgotten. Default: DefaultMaxTurns
	MaxTurns int

	// Logger for structured logging. If nil, logging is disabled.
	Logger volumetric.Logger
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
}

// exchange is one completed phrase/tool-call round.
type exchange struct {
	phrase   string
	toolID   string
	toolName string
	input    json.RawMessage
}

// Agent selects templates with tool use.
type Agent struct {
	client    MessagesClient
	registry  *volumetric.Registry
	navigator volumetric.Navigator
	config    Config

	mu          sync.Mutex
	transcripts map[string][]exchange
}

// NewAgent creates an agent offering every template in registry.
func NewAgent(client MessagesClient, registry *volumetric.Registry, nav volumetric.Navigator, cfg *Config) *Agent {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	c.applyDefaults()
	return &Agent{
		client:      client,
		registry:    registry,
		navigator:   nav,
		config:      c,
		transcripts: make(map[string][]exchange),
	}
}

// Notify implements volumetric.Bridge. The phrase is recorded in the
// transcript only once the model answered it with a tool call.
func (a *Agent) Notify(ctx context.Context, phrase volumetric.ActionPhrase) error {
	text := strings.TrimSpace(phrase.Text)
	if text == "" {
		return volumetric.ErrInvalidPhrase
	}

	a.mu.Lock()
	history := append([]exchange(nil), a.transcripts[phrase.SessionID]...)
	a.mu.Unlock()

	params := a.buildParams(history, text)
	resp, err := a.client.New(ctx, params)
	if err != nil {
		return fmt.Errorf("%w: %w", volumetric.ErrBridgeUnavailable, err)
	}

	call, ok := firstToolCall(resp)
	if !ok {
		a.config.Logger.Warn("model answered without a tool call",
			"session_id", phrase.SessionID,
			"stop_reason", string(resp.StopReason),
		)
		return ErrNoToolCall
	}

	a.record(phrase.SessionID, exchange{
		phrase:   text,
		toolID:   call.ID,
		toolName: call.Name,
		input:    call.Input,
	})

	req := &volumetric.NavigationRequest{
		SessionID:   phrase.SessionID,
		TemplateKey: call.Name,
		Props:       call.Input,
	}
	if err := req.Normalize(); err != nil {
		return err
	}
	a.config.Logger.Debug("model selected template",
		"session_id", phrase.SessionID,
		"template", req.TemplateKey,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return a.navigator.Navigate(ctx, req)
}

// Forget drops a session's transcript.
func (a *Agent) Forget(sessionID string) {
	a.mu.Lock()
	delete(a.transcripts, sessionID)
	a.mu.Unlock()
}

// Turns returns the number of exchanges remembered for a session.
func (a *Agent) Turns(sessionID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.transcripts[sessionID])
}

// record appends an exchange, trimming to MaxTurns.
func (a *Agent) record(sessionID string, ex exchange) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t := append(a.transcripts[sessionID], ex)
	if over := len(t) - a.config.MaxTurns; over > 0 {
		t = append([]exchange(nil), t[over:]...)
	}
	a.transcripts[sessionID] = t
}

// buildParams builds the request for a new phrase on top of history.
//
// Each past exchange is a user turn followed by the assistant's tool call.
// The tool result for a call is sent at the start of the next user turn,
// as the API requires.
func (a *Agent) buildParams(history []exchange, phrase string) anthropic.MessageNewParams {
	messages := make([]anthropic.MessageParam, 0, 2*len(history)+1)

	var prevToolID string
	userTurn := func(text string) anthropic.MessageParam {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
		if prevToolID != "" {
			blocks = append(blocks, anthropic.NewToolResultBlock(prevToolID, "Shown to the user.", false))
		}
		blocks = append(blocks, anthropic.NewTextBlock(text))
		return anthropic.NewUserMessage(blocks...)
	}

	for _, ex := range history {
		messages = append(messages, userTurn(ex.phrase))
		var input any = map[string]any{}
		if len(ex.input) > 0 {
			input = ex.input
		}
		messages = append(messages, anthropic.NewAssistantMessage(
			anthropic.NewToolUseBlock(ex.toolID, input, ex.toolName),
		))
		prevToolID = ex.toolID
	}
	messages = append(messages, userTurn(phrase))

	return anthropic.MessageNewParams{
		Model:     anthropic.Model(a.config.Model),
		MaxTokens: a.config.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: a.config.SystemPrompt},
		},
		Messages:   messages,
		Tools:      a.tools(),
		ToolChoice: anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}},
	}
}

// tools offers one tool per registered template.
func (a *Agent) tools() []anthropic.ToolUnionParam {
	descs := a.registry.Descriptors()
	tools := make([]anthropic.ToolUnionParam, 0, len(descs))
	for _, d := range descs {
		toolParam := d.Schema.ToAnthropicTool(d.Key, d.Description)
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return tools
}

// firstToolCall returns the first tool_use block of a response.
func firstToolCall(resp *anthropic.Message) (anthropic.ToolUseBlock, bool) {
	for _, block := range resp.Content {
		if call, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			return call, true
		}
	}
	return anthropic.ToolUseBlock{}, false
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}

var _ volumetric.Bridge = (*Agent)(nil)
