package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvellian/tweetbench/internal/logging"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

func tweetServer(t *testing.T, lines int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < lines; i++ {
			fmt.Fprintf(w, `{"id_str":"%d","user":{"id_str":"u%d"}}`+"\n", i, i)
		}
	}))
}

func TestSaveFirstN_StopsAtCount(t *testing.T) {
	srv := tweetServer(t, 100)
	defer srv.Close()

	f := NewFetcherWithClient(srv.Client(), logging.NewNullLogger())
	path := filepath.Join(t.TempDir(), "tweets.txt")

	n, err := f.SaveFirstN(context.Background(), srv.URL, path, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimRight(string(data), "\n"), "\n"), 10)
}

func TestSaveFirstN_ShortSource(t *testing.T) {
	srv := tweetServer(t, 3)
	defer srv.Close()

	f := NewFetcherWithClient(srv.Client(), logging.NewNullLogger())
	path := filepath.Join(t.TempDir(), "tweets.txt")

	n, err := f.SaveFirstN(context.Background(), srv.URL, path, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSaveFirstN_InvalidCount(t *testing.T) {
	f := NewFetcher(logging.NewNullLogger())

	_, err := f.SaveFirstN(context.Background(), "http://example.com", "out.txt", 0)
	assert.True(t, errors.Is(err, tweetbench.ErrInvalidConfig))
}

func TestSaveFirstN_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcherWithClient(srv.Client(), logging.NewNullLogger())
	path := filepath.Join(t.TempDir(), "tweets.txt")

	_, err := f.SaveFirstN(context.Background(), srv.URL, path, 5)
	assert.True(t, errors.Is(err, tweetbench.ErrFetchFailed))
}

func TestOpen_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets.txt")
	require.NoError(t, os.WriteFile(path, []byte("line\n"), 0644))

	f := NewFetcher(logging.NewNullLogger())
	rc, err := f.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()
}

func TestOpen_MissingFile(t *testing.T) {
	f := NewFetcher(logging.NewNullLogger())

	_, err := f.Open(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.True(t, errors.Is(err, tweetbench.ErrSourceNotFound))
}

func TestOpen_URL(t *testing.T) {
	srv := tweetServer(t, 1)
	defer srv.Close()

	f := NewFetcherWithClient(srv.Client(), logging.NewNullLogger())
	rc, err := f.Open(context.Background(), srv.URL)
	require.NoError(t, err)
	rc.Close()
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("http://example.com/tweets.txt"))
	assert.True(t, IsURL("https://example.com/tweets.txt"))
	assert.False(t, IsURL("tweets.txt"))
	assert.False(t, IsURL("/data/tweets.txt"))
}
