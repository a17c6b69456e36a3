package dcfhdupes

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	globalVerboseLevel int
	debugFlags         map[string]bool
	loggerMu           sync.Mutex
	logger             = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: "dcfhdupes",
		Level:  log.DebugLevel,
	})
}

// SetLogOutput redirects verbose and warning output
func SetLogOutput(w io.Writer) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = newLogger(w)
}

func currentLogger() *log.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	return logger
}

// SetVerboseLevel sets the global verbose level
func SetVerboseLevel(level int) {
	globalVerboseLevel = level
}

// VerboseEnter logs function entry at level 3+ and returns a defer function for exit logging
func VerboseEnter() func() {
	if globalVerboseLevel < 3 {
		return func() {}
	}

	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return func() {}
	}

	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	l := currentLogger()
	l.Debug("entering", "func", funcName)
	return func() {
		l.Debug("exiting", "func", funcName)
	}
}

// VerboseLog logs a message at the specified verbose level
func VerboseLog(level int, format string, args ...interface{}) {
	if globalVerboseLevel < level {
		return
	}
	msg := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
	l := currentLogger()
	if level >= 2 {
		l.Debug(msg, "v", level)
		return
	}
	l.Info(msg)
}

// Warnf logs a warning regardless of the verbose level
func Warnf(format string, args ...interface{}) {
	currentLogger().Warn(strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}

// SetDebugFlags sets the debug flags from a comma-separated string
// Supports both simple flags ("scan,split") and key:value format ("scan:true,split:false")
func SetDebugFlags(flagsStr string) {
	debugFlags = make(map[string]bool)
	if flagsStr == "" {
		return
	}

	flags := strings.Split(flagsStr, ",")
	for _, flag := range flags {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		parts := strings.SplitN(flag, ":", 2)
		flagName := strings.ToLower(parts[0])
		flagValue := true

		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "false", "0", "no", "off":
				flagValue = false
			}
		}

		debugFlags[flagName] = flagValue
	}
}

// IsDebugEnabled returns true if the specified debug flag is enabled
func IsDebugEnabled(flag string) bool {
	if debugFlags == nil {
		return false
	}
	return debugFlags[strings.ToLower(flag)]
}
