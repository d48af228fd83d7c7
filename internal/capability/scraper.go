package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rahul/vela/internal/governance"
)

// ReadPage fetches a URL and extracts the readable article text.
type ReadPage struct {
	UserAgent string
}

func NewReadPage() *ReadPage {
	return &ReadPage{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
}

func (r *ReadPage) Name() string { return "read_page" }

func (r *ReadPage) Description() string {
	return "Fetch a webpage URL and extract the main content as clean, sanitized text."
}

func (r *ReadPage) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The full URL of the webpage to read (e.g., https://example.com/article)",
			},
		},
		"required": []string{"url"},
	}
}

func (r *ReadPage) Authorization() governance.Level { return governance.LevelOpen }

func (r *ReadPage) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, "GET", args.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", r.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status code %d", resp.StatusCode)
	}

	parsedURL, err := url.Parse(args.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %v", err)
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %v", err)
	}

	// Sanitize output (remove any remaining HTML tags or scripts)
	p := bluemonday.StrictPolicy()
	sanitized := p.Sanitize(article.TextContent)

	output := fmt.Sprintf("TITLE: %s\n", article.Title)
	if article.Excerpt != "" {
		output += fmt.Sprintf("EXCERPT: %s\n", article.Excerpt)
	}
	output += "\n-- CONTENT --\n"

	// Limit content length to avoid massive token usage
	content := sanitized
	if len(content) > 50000 {
		content = content[:50000] + "\n... (content truncated) ..."
	}
	output += content

	return output, nil
}
