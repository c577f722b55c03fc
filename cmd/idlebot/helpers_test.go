package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

// execute runs a fresh root command and returns its combined output.
func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "idlebot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func writeCapture(t *testing.T, buf screen.PixelBuffer) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.png")
	require.NoError(t, screen.SavePNG(buf, path))
	return path
}
