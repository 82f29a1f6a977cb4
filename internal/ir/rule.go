package ir

import "strings"

// Verb is the connective of a rule.
type Verb string

const (
	VerbIs Verb = "IS"
	VerbIf Verb = "IF"
)

// Rule is an active "X IS Y" or "X IF P IS Y" statement.
//
// For IF rules, ConditionObject is the object type the rule gates on (the
// subject) and ConditionProperty is the flag that must already be present.
type Rule struct {
	Subject           string `json:"subject" yaml:"subject"`
	Verb              Verb   `json:"verb" yaml:"verb"`
	Predicate         string `json:"predicate" yaml:"predicate"`
	ConditionObject   string `json:"condition_object,omitempty" yaml:"condition_object,omitempty"`
	ConditionProperty string `json:"condition_property,omitempty" yaml:"condition_property,omitempty"`
}

// Is builds an unconditional rule.
func Is(subject, predicate string) Rule {
	return Rule{Subject: subject, Verb: VerbIs, Predicate: predicate}
}

// If builds a conditional rule granting predicate to subject objects that
// already carry condition.
func If(subject, condition, predicate string) Rule {
	return Rule{
		Subject:           subject,
		Verb:              VerbIf,
		Predicate:         predicate,
		ConditionObject:   subject,
		ConditionProperty: condition,
	}
}

// IsConditional reports whether r is an IF rule.
func (r Rule) IsConditional() bool {
	return r.Verb == VerbIf
}

// Key identifies a rule for duplicate detection.
func (r Rule) Key() string {
	if r.IsConditional() {
		return strings.Join([]string{r.Subject, string(r.Verb), r.Predicate, r.ConditionObject, r.ConditionProperty}, "|")
	}
	return strings.Join([]string{r.Subject, string(r.Verb), r.Predicate}, "|")
}

// Triple returns the rule as [subject, verb, predicate], with the condition
// property appended for IF rules.
func (r Rule) Triple() []string {
	if r.IsConditional() {
		return []string{r.Subject, string(r.Verb), r.Predicate, r.ConditionProperty}
	}
	return []string{r.Subject, string(r.Verb), r.Predicate}
}

// String renders the rule the way it reads on the board.
func (r Rule) String() string {
	if r.IsConditional() {
		return r.Subject + " IF " + r.ConditionProperty + " IS " + r.Predicate
	}
	return r.Subject + " IS " + r.Predicate
}

// CloneRules copies a rule slice.
func CloneRules(rules []Rule) []Rule {
	if rules == nil {
		return nil
	}
	return append([]Rule(nil), rules...)
}
