//go:build !windows

package ui

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
)

// OpenFileInDefaultApp opens filePath with the desktop's default handler.
func OpenFileInDefaultApp(filePath string, logger zerolog.Logger) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", filePath)
	default:
		cmd = exec.Command("xdg-open", filePath)
	}

	logger.Debug().Str("cmd", cmd.String()).Msg("Opening file in default app")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command (%s): %w", cmd.String(), err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
