//go:build windows

package ui

import "github.com/rs/zerolog"

// OpenFileInDefaultApp opens filePath with the default handler through ShellExecuteW.
func OpenFileInDefaultApp(filePath string, logger zerolog.Logger) error {
	logger.Debug().Str("path", filePath).Msg("Opening file with ShellExecuteW")
	return shellExecute(0, "open", filePath, "", "", swShowNormal)
}
