package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/focuscope/focuscope/config"
	"github.com/focuscope/focuscope/providers/models"
	"github.com/focuscope/focuscope/report"
	scanmodels "github.com/focuscope/focuscope/scanner/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider replays a fixed chunk sequence.
type fakeProvider struct {
	chunks []models.StreamResponse
}

func (p *fakeProvider) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	out := make(chan models.StreamResponse)
	go func() {
		defer close(out)
		for _, chunk := range p.chunks {
			select {
			case <-ctx.Done():
				return
			case out <- chunk:
			}
		}
	}()
	return out
}

func testSnapshot(t *testing.T) *scanmodels.ScanSnapshot {
	t.Helper()
	return &scanmodels.ScanSnapshot{
		ProjectName: "demo",
		ProjectType: "go",
		RootPath:    t.TempDir(),
		ScannedAt:   time.Now(),
		Root:        &scanmodels.DirectoryNode{Name: "demo"},
	}
}

func testGenerator(provider *fakeProvider, charLimit int) *Generator {
	return &Generator{
		Provider:  provider,
		Renderer:  report.NewRenderer(config.Default()),
		Theme:     "dracula",
		CharLimit: charLimit,
	}
}

func TestGenerator_GenerateReview(t *testing.T) {
	provider := &fakeProvider{chunks: []models.StreamResponse{
		{Content: "# Review\n"},
		{Content: "Looks solid overall.\n"},
		{Done: true},
	}}
	generator := testGenerator(provider, 0)
	snapshot := testSnapshot(t)

	require.NoError(t, generator.GenerateReview(context.Background(), snapshot))

	content, err := os.ReadFile(filepath.Join(snapshot.RootPath, ReviewFileName))
	require.NoError(t, err)
	assert.Equal(t, "# Review\nLooks solid overall.\n", string(content))
}

func TestGenerator_GenerateRules(t *testing.T) {
	provider := &fakeProvider{chunks: []models.StreamResponse{
		{Content: "Always run the linter.\n"},
		{Done: true},
	}}
	generator := testGenerator(provider, 0)
	snapshot := testSnapshot(t)

	require.NoError(t, generator.GenerateRules(context.Background(), snapshot))

	content, err := os.ReadFile(filepath.Join(snapshot.RootPath, RulesFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Always run the linter.")
}

func TestGenerator_ProviderErrorPropagates(t *testing.T) {
	provider := &fakeProvider{chunks: []models.StreamResponse{
		{Content: "partial"},
		{Err: errors.New("connection reset")},
	}}
	generator := testGenerator(provider, 0)
	snapshot := testSnapshot(t)

	err := generator.GenerateReview(context.Background(), snapshot)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	_, statErr := os.Stat(filepath.Join(snapshot.RootPath, ReviewFileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerator_BuildContextTruncation(t *testing.T) {
	generator := testGenerator(&fakeProvider{}, 50)
	built := generator.BuildContext(testSnapshot(t))

	assert.LessOrEqual(t, len(built), 50+len(truncationMarker))
	assert.True(t, strings.HasSuffix(built, "[analysis context truncated]\n"))
}

func TestGenerator_BuildContextValidUTF8AtAnyLimit(t *testing.T) {
	snapshot := testSnapshot(t)
	full := testGenerator(&fakeProvider{}, 0).BuildContext(snapshot)

	// The rendered report contains multi-byte glyphs; sweeping the limit
	// hits cuts that would otherwise land mid-rune.
	for limit := 1; limit < len(full); limit += 7 {
		built := testGenerator(&fakeProvider{}, limit).BuildContext(snapshot)
		require.Truef(t, utf8.ValidString(built), "limit %d produced invalid UTF-8", limit)
	}
}

func TestGenerator_EmptyResponseIsError(t *testing.T) {
	provider := &fakeProvider{chunks: []models.StreamResponse{{Done: true}}}
	generator := testGenerator(provider, 0)

	err := generator.GenerateReview(context.Background(), testSnapshot(t))
	require.Error(t, err)
}
