package hotkey

import "fmt"

// Action is an application command that can be bound to a hotkey.
type Action int

const (
	Scale Action = iota
	Overlay

	// ActionCount is the number of actions. It is not an action itself.
	ActionCount
)

var actionNames = [ActionCount]string{
	Scale:   "scale",
	Overlay: "overlay",
}

var defaultHotkeys = [ActionCount]Hotkey{
	Scale:   {Win: true, Shift: true, Code: 'A'},
	Overlay: {Win: true, Shift: true, Code: 'D'},
}

// String returns the name used for the action in the config file.
func (a Action) String() string {
	if a.IsValid() {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// IsValid reports whether a names a real action.
func (a Action) IsValid() bool {
	return a >= 0 && a < ActionCount
}

// Actions returns all actions in declaration order.
func Actions() []Action {
	all := make([]Action, 0, ActionCount)
	for a := Action(0); a < ActionCount; a++ {
		all = append(all, a)
	}
	return all
}

// DefaultHotkey returns the built-in combination for a.
func DefaultHotkey(a Action) Hotkey {
	if !a.IsValid() {
		return Hotkey{}
	}
	return defaultHotkeys[a]
}
