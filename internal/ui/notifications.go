package ui

import (
	"strings"

	"github.com/rs/zerolog"
)

// Level orders notifications by importance.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// ParseLevel maps a level name to a Level. Unknown names map to LevelWarn.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	}
	return LevelWarn
}

// NotificationManager shows desktop notifications at or above a minimum level.
type NotificationManager struct {
	appName      string
	minLevel     Level
	embeddedIcon []byte
	logger       zerolog.Logger
	notify       func(title, message string) error
}

// NewNotificationManager creates a notification manager. Notifications below
// minLevel are only logged.
func NewNotificationManager(appName string, minLevel Level, embeddedIcon []byte, logger zerolog.Logger) *NotificationManager {
	n := &NotificationManager{
		appName:      appName,
		minLevel:     minLevel,
		embeddedIcon: embeddedIcon,
		logger:       logger,
	}
	n.notify = n.platformNotify
	return n
}

// Notify shows a notification if level is at least the configured minimum.
func (n *NotificationManager) Notify(level Level, title, message string) {
	if level < n.minLevel {
		n.logger.Debug().Stringer("level", level).Str("title", title).Msg("Notification suppressed")
		return
	}
	if err := n.notify(n.appName+": "+title, message); err != nil {
		n.logger.Warn().Err(err).Str("title", title).Msg("Failed to show notification")
		return
	}
	n.logger.Debug().Stringer("level", level).Str("title", title).Msg("Notification sent")
}

func (n *NotificationManager) Info(title, message string) { n.Notify(LevelInfo, title, message) }

func (n *NotificationManager) Warn(title, message string) { n.Notify(LevelWarn, title, message) }

func (n *NotificationManager) Error(title, message string) { n.Notify(LevelError, title, message) }
