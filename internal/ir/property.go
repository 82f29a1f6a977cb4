package ir

import "strings"

// Property is a named boolean behavior attached to objects by rules.
type Property uint8

const (
	PropYou Property = iota
	PropWin
	PropStop
	PropPush
	PropDefeat
	PropRed
	PropDestruct
	PropImpact
	PropShut
	PropOpen

	numProperties
)

var propertyNames = [numProperties]string{
	PropYou:      "YOU",
	PropWin:      "WIN",
	PropStop:     "STOP",
	PropPush:     "PUSH",
	PropDefeat:   "DEFEAT",
	PropRed:      "RED",
	PropDestruct: "DESTRUCT",
	PropImpact:   "IMPACT",
	PropShut:     "SHUT",
	PropOpen:     "OPEN",
}

// AllProperties lists every recognized property in declaration order.
func AllProperties() []Property {
	out := make([]Property, 0, numProperties)
	for p := Property(0); p < numProperties; p++ {
		out = append(out, p)
	}
	return out
}

// String returns the rule word for p.
func (p Property) String() string {
	if p < numProperties {
		return propertyNames[p]
	}
	return "UNKNOWN"
}

// ParseProperty maps a rule word to a Property. Matching is case-insensitive.
func ParseProperty(word string) (Property, bool) {
	w := strings.ToUpper(strings.TrimSpace(word))
	for p := Property(0); p < numProperties; p++ {
		if propertyNames[p] == w {
			return p, true
		}
	}
	return 0, false
}

// IsPropertyName reports whether word names a recognized property.
func IsPropertyName(word string) bool {
	_, ok := ParseProperty(word)
	return ok
}

// permanentRedBit sits above the property bits.
const permanentRedBit Flags = 1 << 15

// Flags is the set of behavioral flags an object carries.
//
// One bit per Property plus the sticky permanent_red bit. Flags is a value:
// recomputation builds a fresh set instead of toggling bits on shared state.
type Flags uint16

// Has reports whether p is set.
func (f Flags) Has(p Property) bool {
	return f&(1<<p) != 0
}

// With returns f with p set.
func (f Flags) With(p Property) Flags {
	return f | 1<<p
}

// Without returns f with p cleared.
func (f Flags) Without(p Property) Flags {
	return f &^ (1 << p)
}

// PermanentRed reports whether the sticky red marker is set.
func (f Flags) PermanentRed() bool {
	return f&permanentRedBit != 0
}

// WithPermanentRed returns f with the sticky red marker set.
func (f Flags) WithPermanentRed() Flags {
	return f | permanentRedBit
}

// Reset clears every property bit and keeps only permanent_red.
func (f Flags) Reset() Flags {
	return f & permanentRedBit
}

// Apply sets the flags a rule predicate grants. RED also marks the object
// permanently red and IMPACT behaves exactly like DESTRUCT.
func (f Flags) Apply(p Property) Flags {
	f = f.With(p)
	switch p {
	case PropRed:
		f = f.WithPermanentRed()
	case PropImpact:
		f = f.With(PropDestruct)
	}
	return f
}

// Names returns the active property names in declaration order.
func (f Flags) Names() []string {
	names := []string{}
	for p := Property(0); p < numProperties; p++ {
		if f.Has(p) {
			names = append(names, propertyNames[p])
		}
	}
	return names
}
