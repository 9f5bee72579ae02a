package rewrite

import (
	"regexp"
	"strings"
)

// Rule names, in the order DefaultRules applies them
const (
	RuleSingleQuotes    = "single-quotes"
	RuleWithValues      = "with-values"
	RuleIntegerLiterals = "integer-literals"
	RuleConstNew        = "const-new"
	RuleConstReturn     = "const-return"
	RuleOffsetZero      = "offset-zero"
)

// The rules work on raw text, not tokens. Known blind spots:
//   - quotes inside comments or inside ${...} interpolations are treated as strings
//   - `return f(` gets a const qualifier even when f is a function, not a constructor
//   - constructors that have no const form are still marked const
var defaultRules = []Rule{
	{
		// Escapes and single-quoted strings are matched as whole tokens so that
		// a quote inside them never opens a string. Double-quoted strings
		// containing an apostrophe or an escaped quote stay double-quoted.
		Name:     RuleSingleQuotes,
		Pattern:  regexp.MustCompile(`\\.|'(?:[^'\\\n]|\\.)*'|"((?:[^"\\\n]|\\.)*)"`),
		Template: `'${1}'`,
		Skip: func(src string, loc []int) bool {
			if loc[2] < 0 {
				return true
			}
			body := src[loc[2]:loc[3]]
			return strings.ContainsRune(body, '\'') || strings.Contains(body, `\"`)
		},
	},
	{
		// Only the call head is rewritten, so nested calls are all converted in
		// one pass and the argument may contain parentheses.
		Name:     RuleWithValues,
		Pattern:  regexp.MustCompile(`\.withOpacity\(\s*([^\s)])`),
		Template: `.withValues(alpha: ${1}`,
	},
	{
		// 1.0.0 and v2.1.0 are version-like sequences, not double literals.
		// 1.0.toString() is a member access and is rewritten.
		Name:     RuleIntegerLiterals,
		Pattern:  regexp.MustCompile(`\b(\d+)\.0\b`),
		Template: `${1}`,
		Skip: func(src string, loc []int) bool {
			if loc[0] > 0 && src[loc[0]-1] == '.' {
				return true
			}
			next := loc[1]
			return next+1 < len(src) && src[next] == '.' && src[next+1] >= '0' && src[next+1] <= '9'
		},
	},
	{
		Name:     RuleConstNew,
		Pattern:  regexp.MustCompile(`\bnew\s+(\w+)\(`),
		Template: `const ${1}(`,
	},
	{
		Name:     RuleConstReturn,
		Pattern:  regexp.MustCompile(`\breturn\s+(\w+)\(`),
		Template: `return const ${1}(`,
	},
	{
		// Runs after integer-literals and the const rules, so it accepts 0 as
		// well as 0.0 and drops a const qualifier: const Offset.zero is invalid.
		Name:     RuleOffsetZero,
		Pattern:  regexp.MustCompile(`(?:\bconst\s+)?\bOffset\(\s*0(?:\.0)?\s*,\s*0(?:\.0)?\s*\)`),
		Template: `Offset.zero`,
	},
}

// DefaultRules returns the lint-fix rule set in its required order
func DefaultRules() *RuleSet {
	return NewRuleSet(defaultRules...)
}
