package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/pkg/config"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

const systemPrompt = "Kamu adalah asisten yang menulis deskripsi singkat fasilitas umum " +
	"dalam Bahasa Indonesia. Tulis satu paragraf, maksimal 80 kata, tanpa " +
	"daftar dan tanpa format Markdown."

// Client generates facility descriptions through the Groq chat completion API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Groq client.
func NewClient(cfg *config.GroqConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("groq api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "llama-3.1-8b-instant"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Describe returns an AI-generated description for a facility.
func (c *Client) Describe(ctx context.Context, req entities.DescriptionRequest) (string, error) {
	if req.Name == "" {
		return "", errors.New("facility name is required")
	}

	payload := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(req)},
		},
		"temperature": 0.4,
		"max_tokens":  300,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("groq request failed with status %d", resp.StatusCode)
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}

	if len(envelope.Choices) == 0 {
		return "", errors.New("groq response missing choices")
	}

	text := strings.TrimSpace(envelope.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("groq response missing content")
	}
	return text, nil
}

func buildUserPrompt(req entities.DescriptionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buat deskripsi untuk fasilitas %q", req.Name)
	if req.TypeName != "" {
		fmt.Fprintf(&b, " (jenis: %s)", req.TypeName)
	}
	b.WriteString(".")
	if req.Address != "" {
		fmt.Fprintf(&b, " Alamat: %s.", req.Address)
	}
	if req.OpenTime != "" && req.CloseTime != "" {
		fmt.Fprintf(&b, " Jam operasional: %s sampai %s.", req.OpenTime, req.CloseTime)
	}
	if len(req.SubFacilities) > 0 {
		fmt.Fprintf(&b, " Sub-fasilitas yang tersedia: %s.", strings.Join(req.SubFacilities, ", "))
	}
	return b.String()
}
