package device

import (
	"fmt"
	"log/slog"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/dshills/keyremap/internal/errkind"
	"github.com/dshills/keyremap/internal/keycode"
)

// EvdevSink owns one synthetic ("virtual") uinput keyboard device,
// cloned from a real keyboard's advertised capabilities so it can emit
// the same key codes.
type EvdevSink struct {
	log *slog.Logger
	dev *evdev.InputDevice

	mu   sync.Mutex
	held map[keycode.Key]bool
}

// vendorID/productID are this engine's output-device IDs. OpenSink does
// not apply them: evdev.CloneDevice takes only a name and the template.
const (
	vendorID  = 0x4b53 // "KS"
	productID = 0x0001
)

// OpenSink clones capabilities from template (an already-open real
// keyboard device) into a new uinput device named name, so the
// synthetic device advertises exactly the key codes a physical keyboard
// would.
func OpenSink(name string, template *evdev.InputDevice, log *slog.Logger) (*EvdevSink, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "device.evdev", "sink", name)

	dev, err := evdev.CloneDevice(name, template)
	if err != nil {
		return nil, &errkind.OutputError{Key: "<init>", Err: fmt.Errorf("creating synthetic device: %w", err)}
	}

	return &EvdevSink{
		log:  log,
		dev:  dev,
		held: make(map[keycode.Key]bool),
	}, nil
}

// Press implements Sink.
func (s *EvdevSink) Press(key keycode.Key) error {
	return s.write(key, 1)
}

// Release implements Sink.
func (s *EvdevSink) Release(key keycode.Key) error {
	return s.write(key, 0)
}

func (s *EvdevSink) write(key keycode.Key, value int32) error {
	ev := evdev.InputEvent{
		Type:  evdev.EV_KEY,
		Code:  evdev.EvCode(key),
		Value: value,
	}
	if err := s.dev.WriteOne(&ev); err != nil {
		return &errkind.OutputError{Key: key.String(), Err: err}
	}

	s.mu.Lock()
	if value == 1 {
		s.held[key] = true
	} else {
		delete(s.held, key)
	}
	s.mu.Unlock()
	return nil
}

// Sync implements Sink: emits SYN_REPORT, closing the current atomic
// event group.
func (s *EvdevSink) Sync() error {
	ev := evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0}
	if err := s.dev.WriteOne(&ev); err != nil {
		return &errkind.OutputError{Key: "<sync>", Err: err}
	}
	return nil
}

// Held implements Sink.
func (s *EvdevSink) Held() map[keycode.Key]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[keycode.Key]bool, len(s.held))
	for k := range s.held {
		out[k] = true
	}
	return out
}

// Close releases every key still held, then destroys the synthetic
// device, so shutdown never leaves a synthetic key stuck down.
func (s *EvdevSink) Close() error {
	s.mu.Lock()
	keys := make([]keycode.Key, 0, len(s.held))
	for k := range s.held {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	for _, k := range keys {
		if err := s.Release(k); err != nil {
			s.log.Warn("failed to release key on shutdown", "key", k, "err", err)
		}
	}
	if len(keys) > 0 {
		_ = s.Sync()
	}

	return s.dev.Close()
}
