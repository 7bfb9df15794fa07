package device

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/dshills/keyremap/internal/errkind"
	"github.com/dshills/keyremap/internal/keycode"
)

// EvdevSource grabs a fixed set of evdev devices exclusively and fans
// their key events into one ordered channel, filtering out EV_REP
// auto-repeat.
type EvdevSource struct {
	log *slog.Logger

	events chan keycode.KeyEvent
	errs   chan error

	mu      sync.Mutex
	devices map[string]*evdev.InputDevice // path -> device
	alive   int

	ledMu    sync.RWMutex
	capslock bool
	numlock  bool

	closeOnce sync.Once
	done      chan struct{}
}

// OpenSource opens and exclusively grabs every device at paths,
// returning a running Source. A device that fails to open or grab is
// logged and skipped; ErrNoDevices is returned only if none of them
// succeed.
func OpenSource(ctx context.Context, paths []string, log *slog.Logger) (*EvdevSource, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "device.evdev")

	s := &EvdevSource{
		log:     log,
		events:  make(chan keycode.KeyEvent, 64),
		errs:    make(chan error, 16),
		devices: make(map[string]*evdev.InputDevice),
		done:    make(chan struct{}),
	}

	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			s.reportError(&errkind.DeviceError{Path: path, Err: err})
			continue
		}
		if err := dev.Grab(); err != nil {
			s.reportError(&errkind.DeviceError{Path: path, Err: fmt.Errorf("grab: %w", err)})
			_ = dev.Close()
			continue
		}

		s.devices[path] = dev
		s.alive++
		go s.readLoop(ctx, path, dev)
	}

	if s.alive == 0 {
		return nil, ErrNoDevices
	}
	return s, nil
}

// Events implements Source.
func (s *EvdevSource) Events() <-chan keycode.KeyEvent { return s.events }

// Errors implements Source.
func (s *EvdevSource) Errors() <-chan error { return s.errs }

// LEDState implements Source.
func (s *EvdevSource) LEDState() (capslock, numlock bool) {
	s.ledMu.RLock()
	defer s.ledMu.RUnlock()
	return s.capslock, s.numlock
}

// Close ungrabs and closes every device.
func (s *EvdevSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for path, dev := range s.devices {
		if err := dev.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s: %w", path, err)
		}
	}
	return firstErr
}

func (s *EvdevSource) readLoop(ctx context.Context, path string, dev *evdev.InputDevice) {
	name, _ := dev.Name()

	defer func() {
		s.mu.Lock()
		s.alive--
		remaining := s.alive
		s.mu.Unlock()
		if remaining == 0 {
			close(s.events)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}

		ev, err := dev.ReadOne()
		if err != nil {
			s.reportError(&errkind.DeviceError{Path: path, Err: err})
			return
		}
		if ev == nil {
			continue
		}

		switch ev.Type {
		case evdev.EV_KEY:
			action, ok := actionFromValue(ev.Value)
			if !ok {
				continue
			}
			if action == keycode.Repeat {
				// The kernel re-synthesizes repeat from our output presses.
				continue
			}
			s.emit(keycode.KeyEvent{
				Key:        keycode.Key(ev.Code),
				Action:     action,
				Timestamp:  time.Now(),
				DeviceName: name,
			})
		case evdev.EV_LED:
			s.refreshLEDs(path)
		}
	}
}

func (s *EvdevSource) refreshLEDs(path string) {
	caps, num := ledState(path)
	s.ledMu.Lock()
	s.capslock, s.numlock = caps, num
	s.ledMu.Unlock()
}

func actionFromValue(v int32) (keycode.Action, bool) {
	switch v {
	case 0:
		return keycode.Release, true
	case 1:
		return keycode.Press, true
	case 2:
		return keycode.Repeat, true
	default:
		return 0, false
	}
}

func (s *EvdevSource) emit(ev keycode.KeyEvent) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *EvdevSource) reportError(err error) {
	s.log.Warn("device error", "err", err)
	select {
	case s.errs <- err:
	default:
	}
}

// EvdevLister lists candidate keyboard device paths without opening
// them exclusively, for CLI --list-devices wiring (out of scope for the
// engine itself, but the enumeration primitive lives here).
type EvdevLister struct{}

// List implements Lister.
func (EvdevLister) List(ctx context.Context) ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("listing evdev devices: %w", err)
	}

	infos := make([]DeviceInfo, 0, len(paths))
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		if hasKeyEvents(dev) {
			name, _ := dev.Name()
			infos = append(infos, DeviceInfo{Path: p.Path, Name: name})
		}
		_ = dev.Close()
	}
	return infos, nil
}

func hasKeyEvents(dev *evdev.InputDevice) bool {
	for _, t := range dev.CapableTypes() {
		if t == evdev.EV_KEY {
			return true
		}
	}
	return false
}
