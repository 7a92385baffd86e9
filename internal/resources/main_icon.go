// Package resources holds assets embedded into the binary.
package resources

import (
	_ "embed"
	"errors"
)

//go:embed icon.ico
var iconData []byte

var ErrIconNotFound = errors.New("embedded icon is empty")

// GetIcon returns the bytes of the embedded tray icon.
func GetIcon() ([]byte, error) {
	if len(iconData) == 0 {
		return nil, ErrIconNotFound
	}
	return iconData, nil
}
