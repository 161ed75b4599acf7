// Package inject writes rendered notation into the focused application,
// either by simulating keystrokes or through the clipboard.
package inject

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Method names accepted by NewInjector.
const (
	MethodType  = "type"
	MethodPaste = "paste"
	MethodNone  = "none"
)

// Injector sends notation text to the active application.
type Injector struct {
	method string

	// seams over robotgo
	typeStr   func(string)
	readClip  func() (string, error)
	writeClip func(string) error
	keyTap    func(key string, mods ...interface{}) error
}

// NewInjector creates an Injector for method. "none" turns Inject into a
// no-op so notation is only printed; anything unrecognised types.
func NewInjector(method string) *Injector {
	return &Injector{
		method:    method,
		typeStr:   func(s string) { robotgo.Type(s) },
		readClip:  robotgo.ReadAll,
		writeClip: robotgo.WriteAll,
		keyTap:    robotgo.KeyTap,
	}
}

// Method reports the configured injection method.
func (inj *Injector) Method() string { return inj.method }

// Inject sends text using the configured method. Empty text is ignored.
func (inj *Injector) Inject(text string) error {
	if text == "" {
		return nil
	}

	switch inj.method {
	case MethodNone:
		return nil
	case MethodPaste:
		return inj.paste(text)
	default:
		inj.typeStr(text)
		return nil
	}
}

// paste puts text on the clipboard, pastes it, then restores whatever was
// there before (best effort).
func (inj *Injector) paste(text string) error {
	prev, _ := inj.readClip()

	if err := inj.writeClip(text); err != nil {
		return fmt.Errorf("inject: write to clipboard: %w", err)
	}

	mod := pasteModifier()
	if err := inj.keyTap("v", mod); err != nil {
		return fmt.Errorf("inject: key tap %s+v: %w", mod, err)
	}

	_ = inj.writeClip(prev)
	return nil
}

func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
