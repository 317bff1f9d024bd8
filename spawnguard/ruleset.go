package spawnguard

import (
	"fmt"
	"strings"
)

// Mode selects the policy shape a RuleSet is evaluated with
type Mode string

const (
	// DenyOnly rejects objects matching any deny keyword
	DenyOnly Mode = "deny"
	// AllowDeny rejects objects missing from a non-empty allow list, then objects matching the deny list
	AllowDeny Mode = "allow-deny"
	// DenyException rejects objects matching the deny list unless an exception keyword also matches
	DenyException Mode = "deny-exception"
)

// Modes lists every supported policy shape
var Modes = []Mode{DenyOnly, AllowDeny, DenyException}

// ParseMode returns the mode for the given name (case-insensitive)
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown policy mode %q (expected one of %v)", s, Modes)
}

// RuleSet is the policy an object identity is evaluated against.
// Only the lists relevant to Mode are consulted; absent lists behave as empty.
type RuleSet struct {
	Mode       Mode
	Deny       Keywords
	Allow      Keywords
	Exceptions Keywords
}

// NewRuleSet builds a rule set for the given mode from raw keyword lists.
func NewRuleSet(mode Mode, deny, allow, exceptions []string) RuleSet {
	return RuleSet{
		Mode:       mode,
		Deny:       NewKeywords(deny...),
		Allow:      NewKeywords(allow...),
		Exceptions: NewKeywords(exceptions...),
	}
}

// DenyRules is shorthand for a deny-only rule set
func DenyRules(deny ...string) RuleSet {
	return NewRuleSet(DenyOnly, deny, nil, nil)
}

// IsEmpty returns true if the primary matching list for the mode is empty, in which case the
// rule set blocks nothing and no sweep is started for it.
func (r RuleSet) IsEmpty() bool {
	switch r.Mode {
	case AllowDeny:
		return r.Allow.IsEmpty() && r.Deny.IsEmpty()
	default:
		return r.Deny.IsEmpty()
	}
}

func (r RuleSet) String() string {
	switch r.Mode {
	case AllowDeny:
		return fmt.Sprintf("%s(allow=%v deny=%v)", r.Mode, r.Allow.Strings(), r.Deny.Strings())
	case DenyException:
		return fmt.Sprintf("%s(deny=%v exceptions=%v)", r.Mode, r.Deny.Strings(), r.Exceptions.Strings())
	default:
		return fmt.Sprintf("%s(deny=%v)", DenyOnly, r.Deny.Strings())
	}
}
