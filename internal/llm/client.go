package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const completionPath = "/chat/completions"

// Client talks to an OpenAI-compatible chat completion endpoint. Calls are
// never retried here; retry policy belongs to the caller.
type Client struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client
	// streaming responses need their own client so the body can be
	// consumed incrementally instead of buffered whole
	streamClient *fasthttp.Client
	logger       zerolog.Logger
}

func NewClient(baseURL, apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         120 * time.Second,
			WriteTimeout:        30 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		streamClient: &fasthttp.Client{
			MaxConnsPerHost:    16,
			WriteTimeout:       30 * time.Second,
			StreamResponseBody: true,
		},
		logger: logger,
	}
}

// Complete sends a non-streaming completion request and returns the first
// choice's text plus any tool calls the model issued.
func (c *Client) Complete(ctx context.Context, request CompletionRequest) (*Completion, error) {
	request.Stream = false

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	if err := c.prepare(req, request); err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("completion request: %w", err)
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, fmt.Errorf("completion request: %w", err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode(), resp.Body())
	}

	var decoded completionResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("completion response has no choices")
	}

	choice := decoded.Choices[0].Message
	return &Completion{
		Content:   choice.Content,
		ToolCalls: choice.ToolCalls,
	}, nil
}

// Stream sends a streaming completion request. Fragments are delivered in
// arrival order on the returned channel, which is closed when the server
// finishes; concatenating them reconstructs the full text.
func (c *Client) Stream(ctx context.Context, request CompletionRequest) (<-chan Chunk, error) {
	request.Stream = true

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	if err := c.prepare(req, request); err != nil {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
		return nil, err
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.streamClient.DoDeadline(req, resp, deadline)
	} else {
		err = c.streamClient.Do(req, resp)
	}
	if err != nil {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
		return nil, fmt.Errorf("completion stream request: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		status := resp.StatusCode()
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
		return nil, fmt.Errorf("completion endpoint returned %d", status)
	}

	// A read blocked on a stalled stream does not observe ctx; closing the
	// body stream from the watcher unblocks it.
	done := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-ctx.Done():
			_ = resp.CloseBodyStream()
		case <-done:
		}
	}()

	chunks := make(chan Chunk)
	go func() {
		defer close(chunks)
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)
		defer func() {
			close(done)
			<-watcherDone
		}()

		scanner := bufio.NewScanner(resp.BodyStream())
		scanner.Buffer(make([]byte, 0, 4096), 1<<20)
		for scanner.Scan() {
			if ctx.Err() != nil {
				chunks <- Chunk{Err: ctx.Err()}
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "" || payload == "[DONE]" {
				continue
			}

			var decoded streamResponse
			if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
				c.logger.Debug().Err(err).Msg("skipping undecodable stream frame")
				continue
			}
			if len(decoded.Choices) == 0 {
				continue
			}
			if content := decoded.Choices[0].Delta.Content; content != "" {
				chunks <- Chunk{Content: content}
			}
		}
		if err := scanner.Err(); err != nil {
			chunks <- Chunk{Err: fmt.Errorf("read completion stream: %w", err)}
		}
	}()

	return chunks, nil
}

func (c *Client) prepare(req *fasthttp.Request, request CompletionRequest) error {
	encoded, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encode completion request: %w", err)
	}

	req.SetRequestURI(c.baseURL + completionPath)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.SetBody(encoded)
	return nil
}
