package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/tool"
)

const defaultQueryLimit = 10

// Tool names the model calls to search each corpus.
const (
	ToolQueryVideos   = "queryVideos"
	ToolQueryStories  = "queryStories"
	ToolQueryComments = "queryComments"
)

var queryParameters = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "Free-text search query",
		},
	},
	"required": []string{"query"},
}

// NewQueryTool wraps an index as a workflow tool, memoizing results in the
// cache when one is provided.
func NewQueryTool(name, description string, index Index, cache *QueryCache) tool.Tool {
	return tool.Define(name, description, queryParameters, func(ctx context.Context, args map[string]any) (string, error) {
		query, ok := args["query"].(string)
		if !ok || strings.TrimSpace(query) == "" {
			return "", errors.New("query argument is required")
		}

		if cache != nil {
			if cached, hit := cache.Get(ctx, name, query); hit {
				return cached, nil
			}
		}

		documents, err := index.Query(ctx, query, defaultQueryLimit)
		if err != nil {
			return "", err
		}

		result := renderDocuments(documents)

		if cache != nil {
			cache.Set(ctx, name, query, result)
		}

		return result, nil
	})
}

// NewVideoQueryTool searches indexed video transcripts and descriptions.
func NewVideoQueryTool(index Index, cache *QueryCache) tool.Tool {
	return NewQueryTool(ToolQueryVideos, "Search user videos by topic. Returns matching video transcripts and descriptions.", index, cache)
}

// NewStoryQueryTool searches indexed user stories.
func NewStoryQueryTool(index Index, cache *QueryCache) tool.Tool {
	return NewQueryTool(ToolQueryStories, "Search user stories by topic. Returns matching first-person accounts.", index, cache)
}

// NewCommentQueryTool searches indexed user comments.
func NewCommentQueryTool(index Index, cache *QueryCache) tool.Tool {
	return NewQueryTool(ToolQueryComments, "Search user comments by topic. Returns matching comment threads.", index, cache)
}

func renderDocuments(documents []Document) string {
	if len(documents) == 0 {
		return "No results found."
	}

	var b strings.Builder
	for i, doc := range documents {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, strings.TrimSpace(doc.Text))
	}

	return strings.TrimRight(b.String(), "\n")
}
