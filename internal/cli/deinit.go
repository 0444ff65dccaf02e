package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pablasso/triage/internal/store"
	"github.com/spf13/cobra"
)

var (
	deinitForce bool
)

var deinitCmd = &cobra.Command{
	Use:   "deinit",
	Short: "Remove triage from the current directory",
	Long:  "Removes the .triage/ folder with every task and the configuration. This action cannot be undone.",
	RunE:  runDeinit,
}

func init() {
	deinitCmd.Flags().BoolVarP(&deinitForce, "force", "f", false, "Skip confirmation prompt")
}

func runDeinit(cmd *cobra.Command, args []string) error {
	// Check if initialized
	info, err := os.Stat(triageDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("triage is not initialized in this directory")
	}
	if err != nil {
		return fmt.Errorf("failed to check %s directory: %w", triageDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", triageDir)
	}

	locked, err := store.NewLock(triageDir).IsLocked()
	if err != nil {
		return err
	}
	if locked {
		return fmt.Errorf("task store is in use by another process")
	}

	// Calculate what will be deleted
	fileCount, totalSize, err := calculateDirStats(triageDir)
	if err != nil {
		return fmt.Errorf("failed to analyze %s/: %w", triageDir, err)
	}

	// Show confirmation unless --force
	if !deinitForce {
		fmt.Fprintf(stdout, "This will delete %s/ (%d files, %s). Continue? [y/N] ", triageDir, fileCount, formatSize(totalSize))

		reader := bufio.NewReader(stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	// Remove the directory
	if err := os.RemoveAll(triageDir); err != nil {
		return fmt.Errorf("failed to remove %s/: %w", triageDir, err)
	}

	fmt.Fprintln(stdout, "triage has been removed from this directory.")
	return nil
}

func calculateDirStats(dir string) (fileCount int, totalSize int64, err error) {
	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			fileCount++
			totalSize += info.Size()
		}
		return nil
	})
	return
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
