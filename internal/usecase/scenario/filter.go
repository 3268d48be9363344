package scenario

import (
	"fmt"
	"regexp"
)

// excludeTag is left out when no filter expression is given.
const excludeTag = "@mock"

// Filter selects scenarios by a case-insensitive regexp over their title,
// "<tags> <group>/<name>".
type Filter struct {
	include *regexp.Regexp
}

func NewFilter(expr string) (*Filter, error) {
	if expr == "" {
		return &Filter{}, nil
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("invalid scenario filter %q: %w", expr, err)
	}
	return &Filter{include: re}, nil
}

func (f *Filter) Match(s Scenario) bool {
	if f == nil || f.include == nil {
		return !s.HasTag(excludeTag)
	}
	return f.include.MatchString(s.Title())
}

func (f *Filter) String() string {
	if f == nil || f.include == nil {
		return "not " + excludeTag
	}
	return f.include.String()
}
