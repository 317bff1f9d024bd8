package spawnguard

import "strings"

// Reason describes why a decision was reached
type Reason string

const (
	ReasonEmptyPolicy   Reason = "policy is empty"
	ReasonNoMatch       Reason = "no keyword matched"
	ReasonDenied        Reason = "matched deny keyword"
	ReasonNotAllowed    Reason = "not on allow list"
	ReasonAllowed       Reason = "matched allow keyword"
	ReasonExceptionHeld Reason = "deny keyword overridden by exception"
)

// Decision is the outcome of evaluating one identity
type Decision struct {
	Reject bool
	Reason Reason
	// Keyword is the keyword that determined the outcome, if any
	Keyword string
}

// ShouldReject returns true if the identity is rejected under the rule set.
func ShouldReject(id Identity, rules RuleSet) bool {
	return Evaluate(id, rules).Reject
}

// Evaluate decides whether the identity is rejected under the rule set.
// It only reads its inputs and is safe to call concurrently.
func Evaluate(id Identity, rules RuleSet) Decision {
	if rules.IsEmpty() {
		return Decision{Reason: ReasonEmptyPolicy}
	}

	shortName := strings.ToLower(id.ShortName)
	typeName := strings.ToLower(id.TypeName)

	switch rules.Mode {
	case AllowDeny:
		return evaluateAllowDeny(rules, shortName, typeName)
	case DenyException:
		return evaluateDenyException(rules, shortName, typeName)
	default:
		return evaluateDeny(rules, shortName, typeName)
	}
}

func evaluateDeny(rules RuleSet, fields ...string) Decision {
	if k, ok := rules.Deny.FirstMatch(fields...); ok {
		return Decision{Reject: true, Reason: ReasonDenied, Keyword: k.Value}
	}
	return Decision{Reason: ReasonNoMatch}
}

func evaluateAllowDeny(rules RuleSet, fields ...string) Decision {
	var allowedBy string
	if !rules.Allow.IsEmpty() {
		k, ok := rules.Allow.FirstMatch(fields...)
		if !ok {
			return Decision{Reject: true, Reason: ReasonNotAllowed}
		}
		allowedBy = k.Value
	}

	if d := evaluateDeny(rules, fields...); d.Reject {
		return d
	}

	if allowedBy != "" {
		return Decision{Reason: ReasonAllowed, Keyword: allowedBy}
	}
	return Decision{Reason: ReasonNoMatch}
}

func evaluateDenyException(rules RuleSet, fields ...string) Decision {
	d := evaluateDeny(rules, fields...)
	if !d.Reject {
		return d
	}
	// exceptions always win over the deny list
	if k, ok := rules.Exceptions.FirstMatch(fields...); ok {
		return Decision{Reason: ReasonExceptionHeld, Keyword: k.Value}
	}
	return d
}
