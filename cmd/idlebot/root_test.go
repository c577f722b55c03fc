package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConserveLee/orbit-idle/internal/config"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

const testYAML = `
vitality:
  threshold: 30
patrol:
  circle:
    center: {x: 50, y: 50}
    radius: 30
actuator:
  backend: dryrun
logger:
  level: error
`

func TestRootCmd_Version(t *testing.T) {
	out, err := execute(t, context.Background(), "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)

	out, err = execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestRootCmd_BadConfig(t *testing.T) {
	cfg := writeConfig(t, "vitality:\n  threshold: 400\n")
	_, err := execute(t, context.Background(), "-c", cfg, "inspect", "bar", "unused.png")
	assert.ErrorIs(t, err, config.ErrConfigInvalid)
}

func TestInspectBar(t *testing.T) {
	buf := screen.NewPixelBuffer(200, 12)
	buf.Fill(0, 0, 50, 12, screen.RGB{R: 200, G: 30, B: 30})
	buf.Fill(50, 0, 200, 12, screen.RGB{R: 40, G: 40, B: 40})
	capture := writeCapture(t, buf)

	out, err := execute(t, context.Background(), "-c", writeConfig(t, testYAML), "inspect", "bar", capture)
	require.NoError(t, err)
	assert.Contains(t, out, "fill: 2")
	assert.Contains(t, out, "below threshold: true")
	assert.NotContains(t, out, "palette:")
}

func TestInspectBar_Suggest(t *testing.T) {
	buf := screen.NewPixelBuffer(200, 12)
	buf.Fill(0, 0, 200, 12, screen.RGB{R: 200, G: 30, B: 30})
	capture := writeCapture(t, buf)

	out, err := execute(t, context.Background(), "-c", writeConfig(t, testYAML), "inspect", "bar", "--suggest", capture)
	require.NoError(t, err)
	assert.Contains(t, out, "fill: 100.0%")
	assert.Contains(t, out, "palette:")
	assert.Contains(t, out, "healthy:")
	assert.Contains(t, out, "low:")
}

func TestInspectBar_MissingFile(t *testing.T) {
	_, err := execute(t, context.Background(), "-c", writeConfig(t, testYAML), "inspect", "bar", "does-not-exist.png")
	assert.Error(t, err)
}

func TestInspectMarker(t *testing.T) {
	buf := screen.NewPixelBuffer(100, 100)
	buf.Fill(88, 49, 91, 52, screen.RGB{R: 255, G: 255, B: 255})
	capture := writeCapture(t, buf)

	out, err := execute(t, context.Background(), "-c", writeConfig(t, testYAML), "inspect", "marker", capture)
	require.NoError(t, err)
	assert.Contains(t, out, "marker: (")
	assert.Contains(t, out, "state: seeking_center")
	assert.Contains(t, out, "keys=[a]")
	assert.Contains(t, out, "outside circle")
}

func TestInspectMarker_Sequence(t *testing.T) {
	frame := func(x int) string {
		buf := screen.NewPixelBuffer(100, 100)
		buf.Fill(x, 49, x+3, 52, screen.RGB{R: 255, G: 255, B: 255})
		return writeCapture(t, buf)
	}
	out, err := execute(t, context.Background(), "-c", writeConfig(t, testYAML),
		"inspect", "marker", frame(40), frame(43), frame(46))
	require.NoError(t, err)
	assert.Contains(t, out, ": marker: (46, 49) confidence=high")
	assert.Contains(t, out, "history: (40, 49) (43, 49) (46, 49)")
	assert.Contains(t, out, "stabilized: (43, 49)")
	assert.Contains(t, out, "state: orbiting")
}

func TestRun_NothingEnabled(t *testing.T) {
	_, err := execute(t, context.Background(), "-c", writeConfig(t, testYAML), "run", "--vitality=false")
	assert.ErrorIs(t, err, errNothingToRun)
}

func TestRun_RefusesUnconfiguredBar(t *testing.T) {
	_, err := execute(t, context.Background(), "-c", writeConfig(t, testYAML), "run", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vitality.bar")
}
