package actuator

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPort struct {
	mock.Mock
}

func (m *mockPort) Press(key string) error {
	return m.Called(key).Error(0)
}

func (m *mockPort) Release(key string) error {
	return m.Called(key).Error(0)
}

func newTestActuator(port KeyPort) (*Actuator, *[]time.Duration) {
	var slept []time.Duration
	a := New(port)
	a.sleep = func(d time.Duration) { slept = append(slept, d) }
	return a, &slept
}

func TestActuator_PressHoldRelease(t *testing.T) {
	port := new(mockPort)
	var order []string
	port.On("Press", mock.Anything).Run(func(args mock.Arguments) {
		order = append(order, "down:"+args.String(0))
	}).Return(nil)
	port.On("Release", mock.Anything).Run(func(args mock.Arguments) {
		order = append(order, "up:"+args.String(0))
	}).Return(nil)

	a, slept := newTestActuator(port)
	require.NoError(t, a.Press([]string{"w", "d"}, 150*time.Millisecond))

	assert.Equal(t, []string{"down:w", "down:d", "up:w", "up:d"}, order)
	assert.Equal(t, []time.Duration{150 * time.Millisecond}, *slept)
}

func TestActuator_EmptyKeysIsNoop(t *testing.T) {
	port := new(mockPort)
	a, slept := newTestActuator(port)
	require.NoError(t, a.Press(nil, time.Second))
	assert.Empty(t, *slept)
	port.AssertNotCalled(t, "Press", mock.Anything)
}

func TestActuator_FailedPressReleasesPressedKeys(t *testing.T) {
	port := new(mockPort)
	port.On("Press", "w").Return(nil).Once()
	port.On("Press", "a").Return(nil).Once()
	port.On("Press", "s").Return(errors.New("device unplugged")).Once()
	port.On("Release", "a").Return(nil).Once()
	port.On("Release", "w").Return(nil).Once()

	a, slept := newTestActuator(port)
	err := a.Press([]string{"w", "a", "s"}, time.Second)

	require.ErrorIs(t, err, ErrActuation)
	assert.Contains(t, err.Error(), "device unplugged")
	assert.Empty(t, *slept, "no hold after a failed press")
	port.AssertExpectations(t)
	port.AssertNotCalled(t, "Release", "s")
}

func TestActuator_ReleaseErrorsAreAggregated(t *testing.T) {
	port := new(mockPort)
	port.On("Press", mock.Anything).Return(nil)
	port.On("Release", "w").Return(errors.New("stuck w"))
	port.On("Release", "d").Return(errors.New("stuck d"))

	a, _ := newTestActuator(port)
	err := a.Press([]string{"w", "d"}, 0)

	require.ErrorIs(t, err, ErrActuation)
	assert.Contains(t, err.Error(), "stuck w")
	assert.Contains(t, err.Error(), "stuck d")
	port.AssertNumberOfCalls(t, "Release", 2)
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func newTestGate(port KeyPort) (*Gate, *fakeClock) {
	a, _ := newTestActuator(port)
	clock := newClock()
	g := NewGate(a)
	g.now = clock.now
	return g, clock
}

func TestGate_CooldownSkipsSecondCall(t *testing.T) {
	port := new(mockPort)
	port.On("Press", "1").Return(nil)
	port.On("Release", "1").Return(nil)

	g, clock := newTestGate(port)
	const cooldown = 100 * time.Millisecond

	fired, err := g.TryFire([]string{"1"}, cooldown, 0)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, uint64(1), g.Count())

	clock.advance(99 * time.Millisecond)
	fired, err = g.TryFire([]string{"1"}, cooldown, 0)
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Equal(t, uint64(1), g.Count())
	port.AssertNumberOfCalls(t, "Press", 1)

	clock.advance(1 * time.Millisecond)
	fired, err = g.TryFire([]string{"1"}, cooldown, 0)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, uint64(2), g.Count())
	assert.True(t, clock.t.Equal(g.LastAction()))
	port.AssertNumberOfCalls(t, "Press", 2)
}

func TestGate_FailureLeavesStateUntouched(t *testing.T) {
	port := new(mockPort)
	port.On("Press", "1").Return(errors.New("boom"))

	g, _ := newTestGate(port)
	fired, err := g.TryFire([]string{"1"}, time.Second, 0)

	assert.False(t, fired)
	assert.ErrorIs(t, err, ErrActuation)
	assert.Equal(t, uint64(0), g.Count())
	assert.True(t, g.LastAction().IsZero())
}

type closeBuffer struct {
	bytes.Buffer
	closed bool
}

func (c *closeBuffer) Close() error {
	c.closed = true
	return nil
}

func TestSerialKeys_Protocol(t *testing.T) {
	conn := &closeBuffer{}
	keys := NewSerialKeys(conn)

	a, _ := newTestActuator(keys)
	require.NoError(t, a.Press([]string{"w", "f1"}, 0))
	assert.Equal(t, "key_down:w\nkey_down:f1\nkey_up:w\nkey_up:f1\n", conn.String())

	require.NoError(t, keys.Close())
	assert.True(t, conn.closed)
}

func TestValidateKey(t *testing.T) {
	for _, k := range []string{"1", "w", "F5", "f12", "f1"} {
		assert.NoError(t, ValidateKey(k), k)
	}
	for _, k := range []string{"", " ", "f0", "f13", "ctrl", "ff"} {
		assert.ErrorIs(t, ValidateKey(k), ErrInvalidKey, k)
	}
}

func TestOpen_Backends(t *testing.T) {
	dev, err := Open(Options{Backend: BackendDryRun}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, dev.Press("w"))
	require.NoError(t, dev.Close())

	_, err = Open(Options{Backend: "telepathy"}, nil)
	assert.Error(t, err)
}
