package actuator

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/go-vgo/robotgo"
	"github.com/tarm/serial"
	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendRobotgo = "robotgo"
	BackendSerial  = "serial"
	BackendDryRun  = "dryrun"
)

// ErrInvalidKey is returned for key names no backend understands.
var ErrInvalidKey = errors.New("invalid key name")

// Device is a KeyPort that holds an OS resource.
type Device interface {
	KeyPort
	io.Closer
}

// Options selects and configures a key backend.
type Options struct {
	Backend    string
	SerialPort string
	Baud       int
}

// Open returns the device for opts.Backend.
func Open(opts Options, log *zap.Logger) (Device, error) {
	switch opts.Backend {
	case "", BackendRobotgo:
		return RobotgoKeys{}, nil
	case BackendSerial:
		dev, err := OpenSerial(opts.SerialPort, opts.Baud)
		if err != nil {
			return nil, err
		}
		return dev, nil
	case BackendDryRun:
		return NewLogKeys(log), nil
	default:
		return nil, fmt.Errorf("unknown key backend %q", opts.Backend)
	}
}

// ValidateKey accepts a single printable character or f1 through f12.
func ValidateKey(key string) error {
	if len([]rune(key)) == 1 && key != " " {
		return nil
	}
	k := strings.ToLower(key)
	if strings.HasPrefix(k, "f") {
		if n, err := strconv.Atoi(k[1:]); err == nil && n >= 1 && n <= 12 {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidKey, key)
}

// RobotgoKeys injects keys into the local session.
type RobotgoKeys struct{}

func (RobotgoKeys) Press(key string) error {
	if err := robotgo.KeyToggle(strings.ToLower(key), "down"); err != nil {
		return fmt.Errorf("%w: %v", ErrActuation, err)
	}
	return nil
}

func (RobotgoKeys) Release(key string) error {
	if err := robotgo.KeyToggle(strings.ToLower(key), "up"); err != nil {
		return fmt.Errorf("%w: %v", ErrActuation, err)
	}
	return nil
}

func (RobotgoKeys) Close() error { return nil }

// SerialKeys drives an Arduino HID bridge that understands
// "key_down:<key>\n" and "key_up:<key>\n".
type SerialKeys struct {
	mu   sync.Mutex
	conn io.WriteCloser
}

// OpenSerial opens the bridge on the named port.
func OpenSerial(name string, baud int) (*SerialKeys, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:     name,
		Baud:     baud,
		Parity:   serial.ParityNone,
		StopBits: serial.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return NewSerialKeys(port), nil
}

// NewSerialKeys wraps an already open connection.
func NewSerialKeys(conn io.WriteCloser) *SerialKeys {
	return &SerialKeys{conn: conn}
}

func (s *SerialKeys) Press(key string) error {
	return s.send(fmt.Sprintf("key_down:%s\n", key))
}

func (s *SerialKeys) Release(key string) error {
	return s.send(fmt.Sprintf("key_up:%s\n", key))
}

func (s *SerialKeys) send(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.conn.Write([]byte(msg)); err != nil {
		return fmt.Errorf("%w: write to serial bridge: %v", ErrActuation, err)
	}
	return nil
}

func (s *SerialKeys) Close() error {
	return s.conn.Close()
}

// LogKeys only logs transitions. Used for dry runs.
type LogKeys struct {
	log *zap.Logger
}

// NewLogKeys creates a logging port; a nil logger discards everything.
func NewLogKeys(log *zap.Logger) *LogKeys {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogKeys{log: log.Named("keys")}
}

func (l *LogKeys) Press(key string) error {
	l.log.Debug("key down", zap.String("key", key))
	return nil
}

func (l *LogKeys) Release(key string) error {
	l.log.Debug("key up", zap.String("key", key))
	return nil
}

func (l *LogKeys) Close() error { return nil }
