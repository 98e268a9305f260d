package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	documents []Document
	err       error
	queries   []string
}

func (i *stubIndex) Query(ctx context.Context, query string, limit int) ([]Document, error) {
	i.queries = append(i.queries, query)
	return i.documents, i.err
}

func TestQueryTool_RendersResults(t *testing.T) {
	index := &stubIndex{documents: []Document{
		{Text: "first match"},
		{Text: "second match"},
	}}

	queryTool := NewVideoQueryTool(index, nil)
	assert.Equal(t, ToolQueryVideos, queryTool.Name())

	result, err := queryTool.Execute(context.Background(), map[string]any{"query": "travel"})
	require.NoError(t, err)

	assert.Equal(t, "[1] first match\n[2] second match", result)
	assert.Equal(t, []string{"travel"}, index.queries)
}

func TestQueryTool_NoResults(t *testing.T) {
	queryTool := NewStoryQueryTool(&stubIndex{}, nil)

	result, err := queryTool.Execute(context.Background(), map[string]any{"query": "nothing"})
	require.NoError(t, err)
	assert.Equal(t, "No results found.", result)
}

func TestQueryTool_RequiresQuery(t *testing.T) {
	queryTool := NewCommentQueryTool(&stubIndex{}, nil)

	_, err := queryTool.Execute(context.Background(), map[string]any{})
	assert.Error(t, err)

	_, err = queryTool.Execute(context.Background(), map[string]any{"query": "   "})
	assert.Error(t, err)
}

func TestQueryTool_PropagatesIndexError(t *testing.T) {
	index := &stubIndex{err: errors.New("text index missing")}
	queryTool := NewVideoQueryTool(index, nil)

	_, err := queryTool.Execute(context.Background(), map[string]any{"query": "x"})
	assert.EqualError(t, err, "text index missing")
}
