package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ParsedDocument is one structured text unit returned by the parsing
// provider.
type ParsedDocument struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// ParseConfig holds per-call settings for the document parsing provider. The
// credential is per-tenant and mandatory.
type ParseConfig struct {
	BaseURL string
	APIKey  string
}

// ParseClient talks to an external document parsing service that converts
// uploaded bytes into markdown text blocks.
type ParseClient struct {
	httpClient *http.Client
}

func NewParseClient() *ParseClient {
	return &ParseClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Parse uploads the file and returns the extracted documents.
func (c *ParseClient) Parse(ctx context.Context, cfg ParseConfig, filename string, data []byte) ([]ParsedDocument, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build parse form failed: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write parse form failed: %w", err)
	}
	if err := writer.WriteField("result_type", "markdown"); err != nil {
		return nil, fmt.Errorf("write parse form failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parse form failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("build parse request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read parse response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("parse response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Documents []ParsedDocument `json:"documents"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse response json failed: %w", err)
	}
	if len(parsed.Documents) == 0 {
		return nil, fmt.Errorf("parse returned no content")
	}
	return parsed.Documents, nil
}
