package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ConserveLee/orbit-idle/internal/config"
)

type memList struct {
	lines []string
}

func (m *memList) Append(v string) error {
	m.lines = append(m.lines, v)
	return nil
}

func (m *memList) Get() ([]string, error) {
	return append([]string(nil), m.lines...), nil
}

func (m *memList) Set(list []string) error {
	m.lines = append([]string(nil), list...)
	return nil
}

func TestNew_ConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "orbit.log")

	log := New(config.LoggerConfig{Level: "debug", LogFile: path, MaxSize: 1}, zapcore.AddSync(&console))
	log.Named("vitality").Info("Bar read", zap.Float64("percent", 42.5))
	require.NoError(t, log.Sync())

	assert.Contains(t, console.String(), "INFO")
	assert.Contains(t, console.String(), "vitality.")
	assert.Contains(t, console.String(), "Bar read")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	sc := bufio.NewScanner(f)
	require.True(t, sc.Scan())
	var entry map[string]any
	require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Bar read", entry["msg"])
	assert.Equal(t, 42.5, entry["percent"])
}

func TestNew_LevelFallback(t *testing.T) {
	var console bytes.Buffer
	log := New(config.LoggerConfig{Level: "chatty"}, zapcore.AddSync(&console))
	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}

func TestViewCore_TrimsAndFormats(t *testing.T) {
	list := &memList{}
	var console bytes.Buffer
	log := New(config.LoggerConfig{Level: "debug"}, zapcore.AddSync(&console), newViewCore(list, 3))

	log.Debug("console only")
	for i := 0; i < 5; i++ {
		log.Info(fmt.Sprintf("line %d", i))
	}

	require.Len(t, list.lines, 3)
	assert.Contains(t, list.lines[0], "INFO: line 2")
	assert.Contains(t, list.lines[2], "INFO: line 4")
	assert.Regexp(t, `^\[\d\d:\d\d:\d\d\] INFO: line 4$`, list.lines[2])
	assert.Contains(t, console.String(), "console only")
}
