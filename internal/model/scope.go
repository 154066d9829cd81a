package model

import "fmt"

type Scope int

const (
	ScopeThis Scope = iota + 1
	ScopeThisAndFollowing
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeThis:
		return "THIS"
	case ScopeThisAndFollowing:
		return "THIS_AND_FOLLOWING"
	case ScopeAll:
		return "ALL"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

func (s Scope) Valid() bool {
	return s >= ScopeThis && s <= ScopeAll
}

func ParseScope(s string) (Scope, error) {
	switch s {
	case "THIS":
		return ScopeThis, nil
	case "THIS_AND_FOLLOWING":
		return ScopeThisAndFollowing, nil
	case "ALL":
		return ScopeAll, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}
