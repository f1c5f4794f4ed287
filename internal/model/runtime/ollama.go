package runtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	olla "github.com/ollama/ollama/api"

	"fuoco/internal/logging"
)

// OllamaRuntime serves generation requests through a local ollama server,
// which hosts the installed artifact.
type OllamaRuntime struct {
	client *olla.Client
	model  string
}

// NewOllamaRuntime creates a runtime client. baseURL defaults to the local
// server when empty.
func NewOllamaRuntime(model, baseURL string, timeout time.Duration) (*OllamaRuntime, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	hc := &http.Client{Timeout: timeout}
	return &OllamaRuntime{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// Stream starts a streaming generation and returns its token stream.
func (o *OllamaRuntime) Stream(ctx context.Context, req GenerationRequest) (*TokenStream, error) {
	stream := NewTokenStream()

	options := map[string]interface{}{}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if len(req.StopSequences) > 0 {
		options["stop"] = req.StopSequences
	}

	go func() {
		var sb strings.Builder
		streaming := true
		err := o.client.Generate(ctx, &olla.GenerateRequest{
			Model:   o.model,
			Prompt:  req.Prompt,
			Stream:  &streaming,
			Options: options,
		}, func(resp olla.GenerateResponse) error {
			if resp.Response == "" {
				return nil
			}
			sb.WriteString(resp.Response)
			if !stream.Emit(ctx, resp.Response) {
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			logging.SessionDebug("ollama generate ended: %v", err)
		}
		stream.Finish(sb.String(), err)
	}()

	return stream, nil
}
