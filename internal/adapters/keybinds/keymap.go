// Package keybinds provides YAML-based hotkey profiles mapping in-game key
// presses to tracker actions.
package keybinds

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Actions a binding can trigger.
const (
	ActionTag   = "tag"
	ActionUntag = "untag"
)

// Binding maps one key chord to an action.
type Binding struct {
	Key    string `yaml:"key"`
	Alt    bool   `yaml:"alt"`
	Ctrl   bool   `yaml:"ctrl"`
	Shift  bool   `yaml:"shift"`
	Action string `yaml:"action"`
}

// Keymap is a hotkey profile, loaded from keybinds.yaml.
type Keymap struct {
	Bindings []Binding `yaml:"bindings"`
}

// Default returns the stock profile: alt+t tags the selection, alt+u untags.
func Default() *Keymap {
	return &Keymap{Bindings: []Binding{
		{Key: "t", Alt: true, Action: ActionTag},
		{Key: "u", Alt: true, Action: ActionUntag},
	}}
}

// Load reads a YAML keymap file from path and returns a validated Keymap.
func Load(path string) (*Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keybinds: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Keymap.
func Parse(data []byte) (*Keymap, error) {
	var km Keymap
	if err := yaml.Unmarshal(data, &km); err != nil {
		return nil, fmt.Errorf("keybinds: parse: %w", err)
	}
	km.normalize()
	if err := km.validate(); err != nil {
		return nil, err
	}
	return &km, nil
}

// Resolve returns the action bound to the given key chord, if any.
func (k *Keymap) Resolve(key string, alt, ctrl, shift bool) (string, bool) {
	key = strings.ToLower(key)
	for _, b := range k.Bindings {
		if b.Key == key && b.Alt == alt && b.Ctrl == ctrl && b.Shift == shift {
			return b.Action, true
		}
	}
	return "", false
}

// normalize lower-cases keys and actions so profiles are case-insensitive.
func (k *Keymap) normalize() {
	for i := range k.Bindings {
		k.Bindings[i].Key = strings.ToLower(strings.TrimSpace(k.Bindings[i].Key))
		k.Bindings[i].Action = strings.ToLower(strings.TrimSpace(k.Bindings[i].Action))
	}
}

// validate checks that every binding is complete, targets a known action,
// and no chord is bound twice.
func (k *Keymap) validate() error {
	var errs []string
	seen := make(map[string]bool)
	for i, b := range k.Bindings {
		if b.Key == "" {
			errs = append(errs, fmt.Sprintf("bindings[%d].key is required", i))
		}
		if b.Action != ActionTag && b.Action != ActionUntag {
			errs = append(errs, fmt.Sprintf("bindings[%d].action must be %q or %q", i, ActionTag, ActionUntag))
		}
		chord := fmt.Sprintf("%s/%t/%t/%t", b.Key, b.Alt, b.Ctrl, b.Shift)
		if seen[chord] {
			errs = append(errs, fmt.Sprintf("bindings[%d] rebinds chord %s", i, chord))
		}
		seen[chord] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("keybinds: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
