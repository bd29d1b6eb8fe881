package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var clearForce bool

// clearCmd deletes the cached match set so the next command ingests again.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the cached matches",
	Long:  "Remove the cached match set. The next command reloads from the stats API or the CSV export. Load history is kept.",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		fmt.Fprintf(os.Stderr, "This will clear the cached matches in: %s\n", cfg.Cache.Path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.orch.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Cleared cache %q in %s\n", cfg.Cache.Key, cfg.Cache.Path)
	return nil
}
