// Package keycode provides the physical key and modifier model shared by
// every other package in this module, and the parser for human-readable
// combo strings such as "Ctrl-Alt-T" or "LShift-F1".
//
// Key values are numerically identical to the Linux evdev keycodes
// (linux/input-event-codes.h) so that the device layer can convert a raw
// evdev event into a Key with a direct cast, with no translation table.
package keycode
