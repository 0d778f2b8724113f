package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDownloadAll(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stats.csv":
			w.Write([]byte("annee;faits\n22;1\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "departements.geojson")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o644))

	targets := []downloadTarget{
		{url: ts.URL + "/stats.csv", dest: filepath.Join(dir, "data", "stats.csv")},
		{url: ts.URL + "/never-fetched", dest: existing},
	}
	downloaded, skipped, err := downloadAll(context.Background(), ts.Client(), targets, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 1, downloaded)
	assert.Equal(t, 1, skipped)

	data, err := os.ReadFile(targets[0].dest)
	require.NoError(t, err)
	assert.Equal(t, "annee;faits\n22;1\n", string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, "data", "*.part"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDownloadAll_Failures(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	dir := t.TempDir()
	log := zaptest.NewLogger(t)

	dest := filepath.Join(dir, "stats.csv")
	_, _, err := downloadAll(context.Background(), ts.Client(), []downloadTarget{{url: ts.URL + "/x", dest: dest}}, log)
	assert.ErrorContains(t, err, "status 404")
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "failed download leaves no file")

	_, _, err = downloadAll(context.Background(), ts.Client(), []downloadTarget{{dest: dest}}, log)
	assert.ErrorContains(t, err, "no download URL")
}
