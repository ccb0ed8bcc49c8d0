package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const promptFormat = "In one or two sentences, give a short bullish, bearish, or neutral assessment of %s stock for an options seller this week. Start with the word Bullish, Bearish, or Neutral."

// Prompt returns the fixed sentiment prompt for ticker.
func Prompt(ticker string) string {
	return fmt.Sprintf(promptFormat, ticker)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Sentiment asks the model for a short assessment of ticker and returns the
// reply verbatim. Identical calls may return different text.
func (c *Client) Sentiment(ctx context.Context, ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	payload, err := json.Marshal(completionRequest{
		Model:    c.model,
		Messages: []message{{Role: "user", Content: Prompt(ticker)}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	var body completionResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&body)

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return "", fmt.Errorf("rate limited")

	default:
		if decodeErr == nil && body.Error != nil && body.Error.Message != "" {
			return "", fmt.Errorf("unexpected status code: %d: %s", res.StatusCode, body.Error.Message)
		}
		return "", fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decoding completion response: %w", decodeErr)
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return body.Choices[0].Message.Content, nil
}
