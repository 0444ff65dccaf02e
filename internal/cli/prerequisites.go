package cli

import (
	"fmt"
	"os"

	"github.com/pablasso/triage/internal/config"
)

// triageDir is the data directory; --dir overrides it.
var triageDir = config.DirName

// IsInitialized checks if triage is initialized in the current directory.
func IsInitialized() bool {
	info, err := os.Stat(triageDir)
	return err == nil && info.IsDir()
}

// RequireInitialized returns an error if triage is not initialized.
func RequireInitialized() error {
	if !IsInitialized() {
		return fmt.Errorf("triage is not initialized. Run 'triage init' first.")
	}
	return nil
}
