package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Fetch the statistics and geometry files when they are missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: cfg.Download.Timeout}
		targets := []downloadTarget{
			{url: cfg.Download.Statistics, dest: cfg.Data.Statistics},
			{url: cfg.Download.Geometry, dest: cfg.Data.Geometry},
		}
		downloaded, skipped, err := downloadAll(cmd.Context(), client, targets, logger)
		fmt.Fprintf(cmd.ErrOrStderr(), "Done: %d downloaded, %d skipped\n", downloaded, skipped)
		return err
	},
}

type downloadTarget struct {
	url  string
	dest string
}

// downloadAll fetches every target whose destination does not exist yet.
// It stops at the first failure.
func downloadAll(ctx context.Context, client *http.Client, targets []downloadTarget, log *zap.Logger) (downloaded, skipped int, err error) {
	for _, t := range targets {
		if _, err := os.Stat(t.dest); err == nil {
			log.Info("skip, already exists", zap.String("path", t.dest))
			skipped++
			continue
		}
		if t.url == "" {
			return downloaded, skipped, fmt.Errorf("%s is missing and no download URL is configured", t.dest)
		}
		log.Info("downloading", zap.String("url", t.url), zap.String("path", t.dest))
		if err := downloadFile(ctx, client, t.url, t.dest); err != nil {
			return downloaded, skipped, fmt.Errorf("download %s: %w", t.url, err)
		}
		downloaded++
	}
	return downloaded, skipped, nil
}

// downloadFile writes to a temporary file next to dest and renames it, so an
// interrupted transfer never leaves a truncated input behind.
func downloadFile(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
