package logger

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2/data/binding"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ConserveLee/orbit-idle/internal/constants"
)

// lineList is the part of binding.StringList the view writer needs.
type lineList interface {
	Append(value string) error
	Get() ([]string, error)
	Set(list []string) error
}

// NewBindingCore returns a core that mirrors Info and above into list as
// short "[15:04:05] INFO: message" lines, keeping the last 100.
func NewBindingCore(list binding.StringList) zapcore.Core {
	return newViewCore(list, constants.LogBindingLines)
}

func newViewCore(list lineList, limit int) zapcore.Core {
	ec := zapcore.EncoderConfig{
		TimeKey:          "T",
		LevelKey:         "L",
		MessageKey:       "M",
		LineEnding:       "",
		EncodeTime:       zapcore.TimeEncoderOfLayout("[15:04:05]"),
		EncodeLevel:      func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) { enc.AppendString(l.CapitalString() + ":") },
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(ec), &viewWriter{list: list, limit: limit}, zap.InfoLevel)
}

// viewWriter appends one list entry per encoded log entry.
type viewWriter struct {
	mu    sync.Mutex
	list  lineList
	limit int
}

func (w *viewWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.list.Append(line); err != nil {
		return 0, err
	}
	lines, err := w.list.Get()
	if err != nil {
		return 0, err
	}
	if len(lines) > w.limit {
		if err := w.list.Set(lines[len(lines)-w.limit:]); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (w *viewWriter) Sync() error { return nil }
