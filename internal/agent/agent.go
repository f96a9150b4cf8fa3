package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ronakgh97/pokebrains/internal/constants"
	"github.com/ronakgh97/pokebrains/internal/llm"
	"github.com/ronakgh97/pokebrains/internal/tools"
)

const systemPrompt = `You are a Pokemon Showdown battle Assistant.

RULES:
- You assist the player labeled [Assist]
- You play against the player labeled [Against]
- Give ONE concrete action only
- Keep reasoning under 2 sentences
- No speculation or uncertainty
- Use tools at your disposal for accurate suggestions (if needed)

RESPONSE FORMAT:
Action: [specific move/switch]
Reason: [why in 1-2 sentences]`

// ErrTooManyIterations is returned when the tool loop hits its iteration cap
// without the model settling on a final answer. It is distinct from tool and
// network failures so callers can tell runaway loops apart.
var ErrTooManyIterations = errors.New("tool loop exceeded maximum iterations")

// Agent owns the conversation history for one match session and runs the
// tool-augmented completion loop against it.
type Agent struct {
	model       string
	temperature float32
	topP        float32

	client   *llm.Client
	registry *tools.Registry
	logger   zerolog.Logger

	history []llm.Message
}

func New(model string, client *llm.Client, registry *tools.Registry, logger zerolog.Logger) *Agent {
	return &Agent{
		model:       model,
		temperature: 0.4,
		topP:        0.9,
		client:      client,
		registry:    registry,
		logger:      logger,
	}
}

// History returns the accumulated conversation so far.
func (a *Agent) History() []llm.Message {
	return a.history
}

// Suggest records the prompt in history, runs the tool loop without
// streaming and records the final answer.
func (a *Agent) Suggest(ctx context.Context, prompt string) (string, error) {
	a.history = append(a.history, llm.Message{Role: llm.RoleUser, Content: prompt})

	text, _, err := a.run(ctx, false)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	a.history = append(a.history, llm.Message{Role: llm.RoleAssistant, Content: text})
	return text, nil
}

// SuggestStream is Suggest in streaming mode: render is called with each text
// fragment as it arrives, and the concatenated answer is recorded in history
// and returned once the stream is exhausted.
func (a *Agent) SuggestStream(ctx context.Context, prompt string, render func(fragment string)) (string, error) {
	a.history = append(a.history, llm.Message{Role: llm.RoleUser, Content: prompt})

	_, chunks, err := a.run(ctx, true)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			return "", fmt.Errorf("completion stream failed: %w", chunk.Err)
		}
		if render != nil {
			render(chunk.Content)
		}
		b.WriteString(chunk.Content)
	}

	text := strings.TrimSpace(b.String())
	a.history = append(a.history, llm.Message{Role: llm.RoleAssistant, Content: text})
	return text, nil
}

// run drives the bounded tool loop. The system prompt is prepended to a copy
// of the history so the stored conversation never carries it. When streaming
// is requested and a round resolves without tool calls, the same messages are
// re-issued as a streaming request; the extra round trip keeps the tool
// decision out of the stream parser.
func (a *Agent) run(ctx context.Context, streaming bool) (string, <-chan llm.Chunk, error) {
	messages := make([]llm.Message, 0, len(a.history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	messages = append(messages, a.history...)

	definitions := a.registry.Definitions()

	for i := 0; i < constants.MaxToolIterations; i++ {
		completion, err := a.client.Complete(ctx, llm.CompletionRequest{
			Model:       a.model,
			Messages:    messages,
			Temperature: a.temperature,
			TopP:        a.topP,
			Tools:       definitions,
		})
		if err != nil {
			return "", nil, fmt.Errorf("completion call failed: %w", err)
		}

		if len(completion.ToolCalls) == 0 {
			if !streaming {
				return completion.Content, nil, nil
			}
			chunks, err := a.client.Stream(ctx, llm.CompletionRequest{
				Model:       a.model,
				Messages:    messages,
				Temperature: a.temperature,
				TopP:        a.topP,
				Tools:       definitions,
			})
			if err != nil {
				return "", nil, fmt.Errorf("completion stream failed: %w", err)
			}
			return "", chunks, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})

		fed := false
		for _, call := range completion.ToolCalls {
			tool, err := a.registry.Lookup(call.Function.Name)
			if err != nil {
				return "", nil, err
			}

			a.logger.Info().Str("tool", call.Function.Name).Str("call_id", call.ID).Msg("executing tool")

			result, err := tool.Execute(ctx, json.RawMessage(call.Function.Arguments))
			if err != nil {
				return "", nil, fmt.Errorf("tool %s failed: %w", call.Function.Name, err)
			}

			if !tool.Feedback() {
				// Terminal tools short-circuit: their output is the answer.
				if streaming {
					return "", singleChunk(result), nil
				}
				return result, nil, nil
			}

			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
			fed = true
		}

		if !fed {
			if streaming {
				return "", singleChunk(completion.Content), nil
			}
			return completion.Content, nil, nil
		}
	}

	return "", nil, ErrTooManyIterations
}

func singleChunk(text string) <-chan llm.Chunk {
	out := make(chan llm.Chunk, 1)
	out <- llm.Chunk{Content: text}
	close(out)
	return out
}
