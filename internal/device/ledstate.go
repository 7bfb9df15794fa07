package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ledState reads CapsLock/NumLock indicator state from sysfs
// (/sys/class/leds/input<N>::capslock/brightness), the kernel's own LED
// trigger nodes for input devices. This avoids depending on an EVIOCGLED
// ioctl wrapper that github.com/holoplot/go-evdev does not expose.
func ledState(eventPath string) (capslock, numlock bool) {
	inputN, err := inputNodeFor(eventPath)
	if err != nil {
		return false, false
	}
	capslock = readLEDBrightness(inputN, "capslock") > 0
	numlock = readLEDBrightness(inputN, "numlock") > 0
	return capslock, numlock
}

// inputNodeFor resolves "/dev/input/eventN" to its parent sysfs "inputM"
// node name, which is what the sibling LED class devices are named
// after ("inputM::capslock").
func inputNodeFor(eventPath string) (string, error) {
	base := filepath.Base(eventPath)
	sysPath := filepath.Join("/sys/class/input", base)
	real, err := filepath.EvalSymlinks(sysPath)
	if err != nil {
		return "", err
	}
	parent := filepath.Dir(real)
	name := filepath.Base(parent)
	if !strings.HasPrefix(name, "input") {
		return "", fmt.Errorf("unexpected sysfs layout for %s", eventPath)
	}
	return name, nil
}

func readLEDBrightness(inputNode, ledName string) int {
	path := filepath.Join("/sys/class/leds", inputNode+"::"+ledName, "brightness")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return v
}
