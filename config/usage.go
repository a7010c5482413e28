// Package config carries the property-bag configuration passed from
// application setup into the graphics package, whose Instance and Device
// keep a copy of it.
package config

import "fmt"

// MultiGPU is the well-known key for requesting device-group rendering. No
// code in this module reads it; the graphics device does not implement
// device-group rendering.
const MultiGPU = "DeviceGroup"

// Usage is a named bag of string/int/bool/float properties, optionally
// chained to a next Usage. Subsystems read the properties they understand by
// key and ignore the rest, so the same Usage chain can configure several
// independent subsystems (instance extensions, pool sizes, ECS initial
// capacities) without those subsystems knowing about each other.
type Usage struct {
	Name   string
	String map[string]string
	Int    map[string]int
	Bool   map[string]bool
	Float  map[string]float32
	Linked *Usage
}

// NewUsage returns an empty Usage named name, with maps pre-sized to cap.
func NewUsage(name string, cap uint) *Usage {
	return &Usage{
		Name:   name,
		String: make(map[string]string, cap),
		Int:    make(map[string]int, cap),
		Bool:   make(map[string]bool, cap),
		Float:  make(map[string]float32, cap),
	}
}

// HasLinked reports whether this Usage chains to another one.
func (u *Usage) HasLinked() bool {
	return u.Linked != nil
}

// GetLinked returns the next Usage in the chain, or an error if there is none.
func (u *Usage) GetLinked() (*Usage, error) {
	if !u.HasLinked() {
		return nil, fmt.Errorf("config: usage %q has no linked usage", u.Name)
	}
	return u.Linked, nil
}

// Print dumps the whole usage chain, following Linked, for debugging.
func (u *Usage) Print() {
	fmt.Printf("%s: strings=%v ints=%v bools=%v floats=%v\n",
		u.Name, u.String, u.Int, u.Bool, u.Float)
	if u.HasLinked() {
		u.Linked.Print()
	}
}
