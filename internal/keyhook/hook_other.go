//go:build !windows && !linux

package keyhook

import "github.com/rs/zerolog"

func installPlatform(func(Event) bool, zerolog.Logger) (func() error, error) {
	return nil, ErrUnsupported
}
