package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahul/vela/internal/governance"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

type WebSearch struct {
	client *duckduckgo.Tool
}

func NewWebSearch() (*WebSearch, error) {
	ddg, err := duckduckgo.New(10, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &WebSearch{client: ddg}, nil
}

func (s *WebSearch) Name() string { return "web_search" }

func (s *WebSearch) Description() string {
	return "Search the web using DuckDuckGo for real-time information."
}

func (s *WebSearch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query to look up",
			},
		},
		"required": []string{"query"},
	}
}

func (s *WebSearch) Authorization() governance.Level { return governance.LevelOpen }

func (s *WebSearch) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	res, err := s.client.Call(ctx, args.Query)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	return res, nil
}
