// Package main is the entry point for the keyremap daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/dshills/keyremap/enginecfg"
	"github.com/dshills/keyremap/internal/device"
	"github.com/dshills/keyremap/internal/engine"
	"github.com/dshills/keyremap/internal/ruleset"
	"github.com/dshills/keyremap/internal/wmcontext"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

const sinkName = "keyremap virtual keyboard"

func main() {
	os.Exit(run())
}

type cliFlags struct {
	configPath  string
	devices     deviceList
	watch       bool
	listDevices bool
	check       bool
	verbose     bool
	session     string
	desktop     string
	dropUID     int
	dropGID     int
	showVersion bool
}

// deviceList lets --devices repeat.
type deviceList []string

func (d *deviceList) String() string { return strings.Join(*d, ",") }

func (d *deviceList) Set(v string) error {
	*d = append(*d, v)
	return nil
}

func run() int {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to options file (TOML)")
	flag.Var(&f.devices, "devices", "Input device path or name (repeatable)")
	flag.BoolVar(&f.watch, "watch", false, "Re-scan for devices when all grabbed devices disappear")
	flag.BoolVar(&f.listDevices, "list-devices", false, "List candidate keyboard devices and exit")
	flag.BoolVar(&f.check, "check", false, "Validate configuration without grabbing devices")
	flag.BoolVar(&f.verbose, "v", false, "Enable debug logging")
	flag.StringVar(&f.session, "session", "", "Session type (x11, wayland)")
	flag.StringVar(&f.desktop, "desktop", "", "Wayland desktop environment (wlroots, kde, cosmic, gnome, cinnamon, hyprland, sway)")
	flag.IntVar(&f.dropUID, "uid", 0, "Drop privileges to this uid after grabbing devices")
	flag.IntVar(&f.dropGID, "gid", 0, "Drop privileges to this gid after grabbing devices")
	flag.BoolVar(&f.showVersion, "version", false, "Show version information")
	flag.Usage = usage
	flag.Parse()

	if f.showVersion {
		fmt.Printf("keyremap %s (%s)\n", version, commit)
		return 0
	}

	setupLogging(f.verbose)

	opts, err := enginecfg.LoadOptions(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if len(f.devices) > 0 {
		opts.DevicePaths = f.devices
	}
	if f.session != "" {
		opts.Session = enginecfg.SessionType(f.session)
	}
	if f.desktop != "" {
		opts.Desktop = enginecfg.Desktop(f.desktop)
	}

	// The rule set proper is assembled by the embedding host; the daemon
	// on its own runs the identity set, which still exercises the full
	// grab/suspend/emit pipeline.
	set := ruleset.NewSet()

	if f.check {
		if err := set.Validate(); err != nil && !isEmptySetError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		fmt.Println("configuration OK")
		return 0
	}

	if f.listDevices {
		return listDevices()
	}

	paths, err := resolveDevicePaths(opts.DevicePaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for {
		code, retry := runOnce(opts, set, paths, f)
		if !retry {
			return code
		}
		slog.Info("all devices gone, re-scanning", "delay", "2s")
		time.Sleep(2 * time.Second)
		if paths, err = resolveDevicePaths(opts.DevicePaths); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
}

// runOnce grabs devices, runs the engine until it stops, and reports
// whether --watch should try again.
func runOnce(opts enginecfg.Options, set *ruleset.Set, paths []string, f cliFlags) (int, bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := device.OpenSource(ctx, paths, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1, f.watch
	}
	defer src.Close()

	template, sinkErr := openTemplate(paths)
	if sinkErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", sinkErr)
		return 1, false
	}
	sink, err := device.OpenSink(sinkName, template, nil)
	template.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1, false
	}
	defer sink.Close()

	if err := dropPrivileges(f.dropUID, f.dropGID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1, false
	}

	prov := wmcontext.Select(
		wmcontext.SessionType(opts.Session),
		wmcontext.Desktop(opts.Desktop),
	)

	eng, err := engine.New(src, sink, prov, set, opts, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1, false
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)
	go func() {
		for sig := range signals {
			if sig == syscall.SIGHUP {
				// Swap in a freshly built rule set without dropping the
				// device grabs.
				if err := eng.Reload(ruleset.NewSet()); err != nil {
					slog.Warn("reload failed", "err", err)
				}
				continue
			}
			cancel()
			return
		}
	}()

	err = eng.Run(ctx)
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, device.ErrNoDevices):
		if f.watch {
			return 1, true
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1, false
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1, false
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func listDevices() int {
	infos, err := device.EvdevLister{}.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	colorize := term.IsTerminal(int(os.Stdout.Fd()))
	for _, info := range infos {
		if colorize {
			fmt.Printf("\x1b[1m%s\x1b[0m\t%s\n", info.Path, info.Name)
		} else {
			fmt.Printf("%s\t%s\n", info.Path, info.Name)
		}
	}
	return 0
}

// resolveDevicePaths expands names into event node paths. Entries that
// start with '/' are used as-is; anything else is matched against
// advertised device names.
func resolveDevicePaths(selectors []string) ([]string, error) {
	if len(selectors) == 0 {
		return autodetectKeyboards()
	}

	var paths []string
	var names []string
	for _, s := range selectors {
		if strings.HasPrefix(s, "/") {
			paths = append(paths, s)
			continue
		}
		names = append(names, s)
	}
	if len(names) > 0 {
		infos, err := device.EvdevLister{}.List(context.Background())
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			for _, name := range names {
				if strings.Contains(strings.ToLower(info.Name), strings.ToLower(name)) {
					paths = append(paths, info.Path)
				}
			}
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no devices matched %v", selectors)
	}
	return paths, nil
}

// autodetectKeyboards selects every device that advertises key events.
func autodetectKeyboards() ([]string, error) {
	infos, err := device.EvdevLister{}.List(context.Background())
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, info := range infos {
		paths = append(paths, info.Path)
	}
	if len(paths) == 0 {
		return nil, errors.New("no keyboard devices found")
	}
	return paths, nil
}

// openTemplate opens the first grabbable device non-exclusively so the
// synthetic output device can clone its advertised capabilities.
func openTemplate(paths []string) (*evdev.InputDevice, error) {
	var firstErr error
	for _, p := range paths {
		dev, err := evdev.Open(p)
		if err == nil {
			return dev, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("no template device available: %w", firstErr)
}

// dropPrivileges lowers the process to the given uid/gid once the
// device nodes are open. Both zero means keep running as-is.
func dropPrivileges(uid, gid int) error {
	if uid == 0 && gid == 0 {
		return nil
	}
	if gid != 0 {
		if err := unix.Setgroups([]int{gid}); err != nil {
			return fmt.Errorf("setgroups: %w", err)
		}
		if err := unix.Setgid(gid); err != nil {
			return fmt.Errorf("setgid: %w", err)
		}
	}
	if uid != 0 {
		if err := unix.Setuid(uid); err != nil {
			return fmt.Errorf("setuid: %w", err)
		}
	}
	return nil
}

// isEmptySetError filters the "keymap has no bindings" validation error:
// an entirely empty rule set is a valid identity configuration.
func isEmptySetError(err error) bool {
	var empty *ruleset.ErrEmptyKeymap
	return errors.As(err, &empty)
}

func usage() {
	fmt.Fprintf(os.Stderr, "keyremap - kernel-level keyboard remapper\n\n")
	fmt.Fprintf(os.Stderr, "Usage: keyremap [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  keyremap --list-devices             Show candidate keyboards\n")
	fmt.Fprintf(os.Stderr, "  keyremap --devices /dev/input/event3\n")
	fmt.Fprintf(os.Stderr, "  keyremap --config remap.toml --watch\n")
}
