package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"inplayrs/backoffice/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, path)
	body, ok := f.bodies[path]
	if !ok {
		return nil, errors.New("feed returned status 500")
	}
	return []byte(body), nil
}

var testFeed = Feed{
	Category:    "soccer",
	Competition: "all",
	FileName:    "inplay_scores.xml",
	Path:        "soccernew/home",
	Type:        Inplay,
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	return matches
}

func TestLoader_WritesFeed(t *testing.T) {
	dataDir := t.TempDir()
	fetcher := &fakeFetcher{bodies: map[string]string{"soccernew/home": "<scores/>"}}

	result := NewLoader(fetcher, dataDir).Load(context.Background(), testFeed)
	require.NoError(t, result.Err)
	assert.Equal(t, 9, result.Bytes)

	data, err := os.ReadFile(filepath.Join(dataDir, "soccer", "all", "inplay_scores.xml"))
	require.NoError(t, err, "Feed file should exist")
	assert.Equal(t, "<scores/>", string(data))
	assert.Empty(t, tempFiles(t, testFeed.Dir(dataDir)), "Temp file should be renamed away")
}

func TestLoader_FailureKeepsPreviousFile(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(testFeed.Dir(dataDir), 0o755))
	require.NoError(t, os.WriteFile(testFeed.FilePath(dataDir), []byte("<old/>"), 0o644))

	fetcher := &fakeFetcher{bodies: map[string]string{}}
	result := NewLoader(fetcher, dataDir).Load(context.Background(), testFeed)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), testFeed.Name())

	data, err := os.ReadFile(testFeed.FilePath(dataDir))
	require.NoError(t, err)
	assert.Equal(t, "<old/>", string(data), "Previous file must be left intact")
	assert.Empty(t, tempFiles(t, testFeed.Dir(dataDir)))
}

func TestLoader_ReplacesExistingFile(t *testing.T) {
	dataDir := t.TempDir()
	fetcher := &fakeFetcher{bodies: map[string]string{"soccernew/home": "<v1/>"}}
	loader := NewLoader(fetcher, dataDir)

	require.NoError(t, loader.Load(context.Background(), testFeed).Err)
	fetcher.bodies["soccernew/home"] = "<v2/>"
	require.NoError(t, loader.Load(context.Background(), testFeed).Err)

	data, err := os.ReadFile(testFeed.FilePath(dataDir))
	require.NoError(t, err)
	assert.Equal(t, "<v2/>", string(data))
}

func TestLoader_LoadAllContinuesAfterFailure(t *testing.T) {
	dataDir := t.TempDir()
	inplay := ForType(Catalog, Inplay)
	fetcher := &fakeFetcher{bodies: map[string]string{
		"soccernew/home":       "<scores/>",
		"commentaries/epl.xml": "<commentaries/>",
	}}

	results := NewLoader(fetcher, dataDir).LoadAll(context.Background(), inplay)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, inplay[i], r.Feed, "Results keep feed order")
	}
	assert.Error(t, results[0].Err, "lines/soccer-inplay has no body")
	assert.NoError(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.FileExists(t, inplay[2].FilePath(dataDir))
	assert.Len(t, fetcher.calls, 3)
}

func TestLoader_WithFeedClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/secret/soccernew/england_shedule", r.URL.Path)
		w.Write([]byte("<odds/>"))
	}))
	defer server.Close()

	dataDir := t.TempDir()
	c := client.NewClient(server.URL, "secret", time.Second)

	result := NewLoader(c, dataDir).Load(context.Background(), Catalog[0])
	require.NoError(t, result.Err)

	data, err := os.ReadFile(Catalog[0].FilePath(dataDir))
	require.NoError(t, err)
	assert.Equal(t, "<odds/>", string(data))
}
