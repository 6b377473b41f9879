package exclude

// List is an ordered collection of rules consulted by the scanner. Rules are
// tried in order and the list reports a match as soon as the first rule
// matches; order therefore only affects which rule is reported, not whether
// a path excludes, since there is no negation semantics here (unlike the
// teacher's ignore patterns, exclude and filter rules in this domain are
// purely additive).
type List struct {
	rules []*Rule
}

// NewList builds a List from already-compiled rules.
func NewList(rules ...*Rule) *List {
	return &List{rules: rules}
}

// Add appends a rule to the end of the list.
func (l *List) Add(rule *Rule) {
	l.rules = append(l.rules, rule)
}

// Empty reports whether the list has no rules, letting callers skip the
// match loop entirely for the common case of an unconfigured list.
func (l *List) Empty() bool {
	return l == nil || len(l.rules) == 0
}

// Match reports whether path matches any rule in the list, and if so, the
// matching rule.
func (l *List) Match(path string) (*Rule, bool) {
	if l == nil {
		return nil, false
	}
	for _, rule := range l.rules {
		if rule.Matches(path) {
			return rule, true
		}
	}
	return nil, false
}
