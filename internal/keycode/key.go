package keycode

import (
	"fmt"

	"golang.org/x/text/cases"
)

// fold is the shared case-folding transformer for key and modifier name
// lookup, so "CTRL", "Ctrl" and "ctrl" all resolve to the same token.
var fold = cases.Fold()

func foldName(s string) string {
	return fold.String(s)
}

// Key identifies a physical key. Values match the Linux evdev keycode
// space (linux/input-event-codes.h) so a raw event's Code field converts
// to a Key with a direct cast.
type Key uint16

// KeyNone represents the absence of a key.
const KeyNone Key = 0

// Keys below are the subset of evdev keycodes this engine names and
// round-trips through the combo parser. Unnamed keycodes still pass
// through the pipeline as raw Key values; they just have no String() name
// and cannot be referenced from a combo string.
const (
	KeyEsc        Key = 1
	Key1          Key = 2
	Key2          Key = 3
	Key3          Key = 4
	Key4          Key = 5
	Key5          Key = 6
	Key6          Key = 7
	Key7          Key = 8
	Key8          Key = 9
	Key9          Key = 10
	Key0          Key = 11
	KeyMinus      Key = 12
	KeyEqual      Key = 13
	KeyBackspace  Key = 14
	KeyTab        Key = 15
	KeyQ          Key = 16
	KeyW          Key = 17
	KeyE          Key = 18
	KeyR          Key = 19
	KeyT          Key = 20
	KeyY          Key = 21
	KeyU          Key = 22
	KeyI          Key = 23
	KeyO          Key = 24
	KeyP          Key = 25
	KeyLeftBrace  Key = 26
	KeyRightBrace Key = 27
	KeyEnter      Key = 28
	KeyLeftCtrl   Key = 29
	KeyA          Key = 30
	KeyS          Key = 31
	KeyD          Key = 32
	KeyF          Key = 33
	KeyG          Key = 34
	KeyH          Key = 35
	KeyJ          Key = 36
	KeyK          Key = 37
	KeyL          Key = 38
	KeySemicolon  Key = 39
	KeyApostrophe Key = 40
	KeyGrave      Key = 41
	KeyLeftShift  Key = 42
	KeyBackslash  Key = 43
	KeyZ          Key = 44
	KeyX          Key = 45
	KeyC          Key = 46
	KeyV          Key = 47
	KeyB          Key = 48
	KeyN          Key = 49
	KeyM          Key = 50
	KeyComma      Key = 51
	KeyDot        Key = 52
	KeySlash      Key = 53
	KeyRightShift Key = 54
	KeyKPAsterisk Key = 55
	KeyLeftAlt    Key = 56
	KeySpace      Key = 57
	KeyCapsLock   Key = 58
	KeyF1         Key = 59
	KeyF2         Key = 60
	KeyF3         Key = 61
	KeyF4         Key = 62
	KeyF5         Key = 63
	KeyF6         Key = 64
	KeyF7         Key = 65
	KeyF8         Key = 66
	KeyF9         Key = 67
	KeyF10        Key = 68
	KeyNumLock    Key = 69
	KeyScrollLock Key = 70
	KeyKP7        Key = 71
	KeyKP8        Key = 72
	KeyKP9        Key = 73
	KeyKPMinus    Key = 74
	KeyKP4        Key = 75
	KeyKP5        Key = 76
	KeyKP6        Key = 77
	KeyKPPlus     Key = 78
	KeyKP1        Key = 79
	KeyKP2        Key = 80
	KeyKP3        Key = 81
	KeyKP0        Key = 82
	KeyKPDot      Key = 83
	KeyF11        Key = 87
	KeyF12        Key = 88
	KeyKPEnter    Key = 96
	KeyRightCtrl  Key = 97
	KeyKPSlash    Key = 98
	KeySysRq      Key = 99
	KeyRightAlt   Key = 100
	KeyHome       Key = 102
	KeyUp         Key = 103
	KeyPageUp     Key = 104
	KeyLeft       Key = 105
	KeyRight      Key = 106
	KeyEnd        Key = 107
	KeyDown       Key = 108
	KeyPageDown   Key = 109
	KeyInsert     Key = 110
	KeyDelete     Key = 111
	KeyLeftMeta   Key = 125
	KeyRightMeta  Key = 126
	KeyF13        Key = 183
	KeyF14        Key = 184
	KeyF15        Key = 185
	KeyF16        Key = 186
	KeyF17        Key = 187
	KeyF18        Key = 188
	KeyF19        Key = 189
	KeyF20        Key = 190
	KeyF21        Key = 191
	KeyF22        Key = 192
	KeyF23        Key = 193
	KeyF24        Key = 194
)

var keyNames = map[Key]string{
	KeyEsc: "Esc", Key1: "1", Key2: "2", Key3: "3", Key4: "4", Key5: "5",
	Key6: "6", Key7: "7", Key8: "8", Key9: "9", Key0: "0",
	KeyMinus: "Minus", KeyEqual: "Equal", KeyBackspace: "Backspace", KeyTab: "Tab",
	KeyQ: "Q", KeyW: "W", KeyE: "E", KeyR: "R", KeyT: "T", KeyY: "Y", KeyU: "U",
	KeyI: "I", KeyO: "O", KeyP: "P",
	KeyLeftBrace: "LeftBrace", KeyRightBrace: "RightBrace", KeyEnter: "Enter",
	KeyLeftCtrl: "LeftCtrl", KeyA: "A", KeyS: "S", KeyD: "D", KeyF: "F", KeyG: "G",
	KeyH: "H", KeyJ: "J", KeyK: "K", KeyL: "L", KeySemicolon: "Semicolon",
	KeyApostrophe: "Apostrophe", KeyGrave: "Grave", KeyLeftShift: "LeftShift",
	KeyBackslash: "Backslash", KeyZ: "Z", KeyX: "X", KeyC: "C", KeyV: "V",
	KeyB: "B", KeyN: "N", KeyM: "M", KeyComma: "Comma", KeyDot: "Dot",
	KeySlash: "Slash", KeyRightShift: "RightShift", KeyKPAsterisk: "KPAsterisk",
	KeyLeftAlt: "LeftAlt", KeySpace: "Space", KeyCapsLock: "CapsLock",
	KeyF1: "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5", KeyF6: "F6",
	KeyF7: "F7", KeyF8: "F8", KeyF9: "F9", KeyF10: "F10",
	KeyNumLock: "NumLock", KeyScrollLock: "ScrollLock",
	KeyKP7: "KP7", KeyKP8: "KP8", KeyKP9: "KP9", KeyKPMinus: "KPMinus",
	KeyKP4: "KP4", KeyKP5: "KP5", KeyKP6: "KP6", KeyKPPlus: "KPPlus",
	KeyKP1: "KP1", KeyKP2: "KP2", KeyKP3: "KP3", KeyKP0: "KP0", KeyKPDot: "KPDot",
	KeyF11: "F11", KeyF12: "F12", KeyKPEnter: "KPEnter", KeyRightCtrl: "RightCtrl",
	KeyKPSlash: "KPSlash", KeySysRq: "SysRq", KeyRightAlt: "RightAlt",
	KeyHome: "Home", KeyUp: "Up", KeyPageUp: "PageUp", KeyLeft: "Left",
	KeyRight: "Right", KeyEnd: "End", KeyDown: "Down", KeyPageDown: "PageDown",
	KeyInsert: "Insert", KeyDelete: "Delete",
	KeyLeftMeta: "LeftMeta", KeyRightMeta: "RightMeta",
	KeyF13: "F13", KeyF14: "F14", KeyF15: "F15", KeyF16: "F16", KeyF17: "F17",
	KeyF18: "F18", KeyF19: "F19", KeyF20: "F20", KeyF21: "F21", KeyF22: "F22",
	KeyF23: "F23", KeyF24: "F24",
}

// keyAliases maps extra lowercase spellings onto a canonical Key, used by
// KeyFromName in addition to the canonical (lowercased) name above.
var keyAliases = map[string]Key{
	"escape":    KeyEsc,
	"return":    KeyEnter,
	"cr":        KeyEnter,
	"bs":        KeyBackspace,
	"del":       KeyDelete,
	"ins":       KeyInsert,
	"pgup":      KeyPageUp,
	"pgdn":      KeyPageDown,
	"caps":      KeyCapsLock,
	"capslock":  KeyCapsLock,
	"esc":       KeyEsc,
	"minus":     KeyMinus,
	"dash":      KeyMinus,
	"equal":     KeyEqual,
	"equals":    KeyEqual,
	"grave":     KeyGrave,
	"tilde":     KeyGrave,
	"semicolon": KeySemicolon,
	"quote":     KeyApostrophe,
	"apostrophe": KeyApostrophe,
	"comma":     KeyComma,
	"period":    KeyDot,
	"dot":       KeyDot,
	"slash":     KeySlash,
}

var nameToKey map[string]Key

func init() {
	nameToKey = make(map[string]Key, len(keyNames)+len(keyAliases))
	for k, name := range keyNames {
		nameToKey[foldName(name)] = k
	}
	for alias, k := range keyAliases {
		nameToKey[alias] = k
	}
}

// String returns the canonical human-readable name for k, or "Key(<n>)" if
// k has no registered name.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint16(k))
}

// IsModifierKey reports whether k is one of the physical keys that carries
// a built-in modifier role (Ctrl, Shift, Alt, Meta/Super) independent of
// any custom modifier the rule set defines.
func (k Key) IsModifierKey() bool {
	switch k {
	case KeyLeftCtrl, KeyRightCtrl, KeyLeftShift, KeyRightShift,
		KeyLeftAlt, KeyRightAlt, KeyLeftMeta, KeyRightMeta:
		return true
	default:
		return false
	}
}

// KeyFromName resolves a key name case-insensitively. Returns KeyNone if
// the name is not recognized.
func KeyFromName(name string) Key {
	if k, ok := nameToKey[foldName(name)]; ok {
		return k
	}
	return KeyNone
}
