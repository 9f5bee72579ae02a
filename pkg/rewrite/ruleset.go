package rewrite

// Result holds the outcome of applying a RuleSet to one buffer
type Result struct {
	Content      string
	Replacements map[string]int // replacements made, keyed by rule name
	Changed      bool
}

// Total returns the number of replacements made by all rules
func (r Result) Total() int {
	n := 0
	for _, c := range r.Replacements {
		n += c
	}
	return n
}

// RuleSet is an immutable ordered list of rules. Each rule sees the output of
// the rule before it.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet creates a RuleSet that applies rules in the given order
func NewRuleSet(rules ...Rule) *RuleSet {
	rs := &RuleSet{rules: make([]Rule, len(rules))}
	copy(rs.rules, rules)
	return rs
}

// Rules returns a copy of the ordered rule list
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Names returns the rule names in application order
func (rs *RuleSet) Names() []string {
	names := make([]string, 0, len(rs.rules))
	for _, r := range rs.rules {
		names = append(names, r.Name)
	}
	return names
}

// Apply runs every rule over content in order
func (rs *RuleSet) Apply(content string) Result {
	res := Result{
		Content:      content,
		Replacements: make(map[string]int),
	}
	for _, r := range rs.rules {
		var n int
		res.Content, n = r.Apply(res.Content)
		if n > 0 {
			res.Replacements[r.Name] += n
		}
	}
	res.Changed = res.Content != content
	return res
}
