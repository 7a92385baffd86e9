//go:build !linux

package main

import (
	"github.com/rs/zerolog"

	"github.com/TanaroSch/hotkeyconf/internal/keyhook"
)

func keyboardOptions(zerolog.Logger) []keyhook.Option {
	return nil
}
