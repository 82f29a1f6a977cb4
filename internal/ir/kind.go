package ir

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is an object type tag such as PUMPKIN or TEXT_PUMPKIN.
//
// Kinds double as rule vocabulary: a rule subject "PUMPKIN" selects every
// non-text object whose Kind is PUMPKIN. The constants below are the kinds
// shipped levels use; levels may declare any other upper-case name.
type Kind string

// TextPrefix marks kinds that are text tokens rather than world objects.
const TextPrefix = "TEXT_"

// Known world kinds.
const (
	KindPumpkin Kind = "PUMPKIN"
	KindSun     Kind = "SUN"
	KindRock    Kind = "ROCK"
	KindWall    Kind = "WALL"
	KindFlag    Kind = "FLAG"
	KindSkull   Kind = "SKULL"
	KindKey     Kind = "KEY"
	KindDoor    Kind = "DOOR"
	KindChain   Kind = "CHAIN"
	KindAnchor  Kind = "ANCHOR"
	KindBaba    Kind = "BABA"
	KindWater   Kind = "WATER"
)

var knownKinds = map[Kind]bool{
	KindPumpkin: true,
	KindSun:     true,
	KindRock:    true,
	KindWall:    true,
	KindFlag:    true,
	KindSkull:   true,
	KindKey:     true,
	KindDoor:    true,
	KindChain:   true,
	KindAnchor:  true,
	KindBaba:    true,
	KindWater:   true,
}

// Operator words. They glue rules together and are never subjects or predicates.
const (
	WordIs      = "IS"
	WordIf      = "IF"
	WordFeeling = "FEELING"
)

var upper = cases.Upper(language.Und)

// NormalizeKind turns a level-supplied type name into a Kind.
// Surrounding space is trimmed, inner spaces and dashes become underscores and
// the result is upper-cased, so "text pumpkin" and "TEXT_PUMPKIN" are equal.
func NormalizeKind(name string) Kind {
	s := strings.TrimSpace(name)
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return Kind(upper.String(s))
}

// TextKind returns the text-token kind naming word.
func TextKind(word string) Kind {
	return Kind(TextPrefix + string(NormalizeKind(word)))
}

// IsText reports whether k names a text token.
func (k Kind) IsText() bool {
	return strings.HasPrefix(string(k), TextPrefix) && len(k) > len(TextPrefix)
}

// Word returns the rule word a kind stands for: the suffix of a text kind,
// or the kind itself for world objects.
func (k Kind) Word() string {
	if k.IsText() {
		return string(k[len(TextPrefix):])
	}
	return string(k)
}

// Known reports whether k (or the word a text kind names) is a built-in kind,
// a property name or an operator word.
func (k Kind) Known() bool {
	w := k.Word()
	if knownKinds[Kind(w)] || IsOperator(w) {
		return true
	}
	_, ok := ParseProperty(w)
	return ok
}

// IsOperator reports whether word is one of IS, IF or FEELING.
func IsOperator(word string) bool {
	switch word {
	case WordIs, WordIf, WordFeeling:
		return true
	}
	return false
}

// IsConditional reports whether word introduces a conditional rule.
// FEELING is accepted as an alternate spelling of IF.
func IsConditional(word string) bool {
	return word == WordIf || word == WordFeeling
}
