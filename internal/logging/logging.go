// Package logging is a thin level filter and formatter over the
// standard logger, driven by the logging section of the config.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// Level is a log severity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

var (
	mu      sync.RWMutex
	current = LevelInfo
	asJSON  bool
)

// Init applies the configured level and format. Unknown level names
// fall back to info; any format other than "json" means plain text.
func Init(level, format string) {
	mu.Lock()
	defer mu.Unlock()
	current = ParseLevel(level)
	asJSON = strings.EqualFold(strings.TrimSpace(format), "json")
	if asJSON {
		// Timestamps live inside the JSON record.
		log.SetFlags(0)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// ParseLevel maps a config level name to a Level, defaulting to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) { logf(LevelDebug, format, args...) }

// Infof logs at info level.
func Infof(format string, args ...interface{}) { logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...interface{}) { logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func Errorf(format string, args ...interface{}) { logf(LevelError, format, args...) }

func logf(l Level, format string, args ...interface{}) {
	mu.RLock()
	min, jsonOut := current, asJSON
	mu.RUnlock()
	if l < min {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if jsonOut {
		rec, err := json.Marshal(map[string]string{
			"time":  time.Now().UTC().Format(time.RFC3339),
			"level": l.String(),
			"msg":   msg,
		})
		if err == nil {
			log.Print(string(rec))
			return
		}
	}
	log.Printf("[%s] %s", strings.ToUpper(l.String()), msg)
}
