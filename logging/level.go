package logging

import (
	"log/slog"
	"strings"
)

// LevelFromString parses names like "debug", "WARN" or "info+2". Anything
// unparseable, or nil, is treated as INFO.
func LevelFromString(str *string) slog.Level {
	if str == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(*str))); err != nil {
		return slog.LevelInfo
	}
	return level
}
