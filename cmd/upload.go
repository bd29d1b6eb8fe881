package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-cod-stats/internal/source"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Upload a CSV export to the stats API and use the result",
	Long: `Send a .csv export to the stats API for processing. On success the
records the API returns replace the cached match set.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	if s.client == nil {
		return errors.New("no stats API configured (set api.base_url or --api)")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	res, err := s.client.Upload(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		if errors.Is(err, source.ErrUploadRejected) {
			return fmt.Errorf("upload failed: %w", err)
		}
		return err
	}
	if res.Message != "" {
		fmt.Fprintln(os.Stderr, res.Message)
	}

	applied := s.orch.ApplyUpload(res.Records)
	if applied.Err != nil {
		return fmt.Errorf("apply upload: %w", applied.Err)
	}
	fmt.Fprintf(os.Stdout, "Uploaded %s: %d matches loaded", filepath.Base(path), applied.Count)
	if n := applied.Stats.Malformed + applied.Stats.Invalid; n > 0 {
		fmt.Fprintf(os.Stdout, " (%d dropped)", n)
	}
	fmt.Fprintln(os.Stdout)
	return nil
}
