package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/raglab/docqa/internal/core/domain"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
}

func New(baseURL, genModel string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// GenerateAnswer grounds the completion on the retrieved partitions.
// The "default" model name resolves to the configured generation model.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, results []domain.DocumentResult, model string) (string, error) {
	return g.client.generateText(ctx, g.client.resolveModel(model), buildAnswerPrompt(question, results))
}

func (c *Client) resolveModel(model string) string {
	model = strings.TrimSpace(model)
	if model == "" || strings.EqualFold(model, "default") {
		return c.genModel
	}
	return model
}

func (c *Client) generateText(ctx context.Context, model, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", wrapTemporaryIfNeeded("generate answer", err)
	}
	return strings.TrimSpace(response.Response), nil
}
