package rewrite

import (
	"regexp"
	"strings"
)

// Rule is a single pattern substitution applied to a whole file
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Template string // expanded per match, $1 / ${1} refer to submatches

	// Skip reports whether the match at loc must be copied verbatim.
	// loc holds submatch index pairs into src as returned by FindAllStringSubmatchIndex.
	Skip func(src string, loc []int) bool
}

// Apply replaces every non-overlapping match of the rule in src and returns
// the new content along with the number of replacements made.
func (r Rule) Apply(src string) (string, int) {
	locs := r.Pattern.FindAllStringSubmatchIndex(src, -1)
	if len(locs) == 0 {
		return src, 0
	}

	var (
		b     strings.Builder
		last  int
		count int
	)
	b.Grow(len(src))
	for _, loc := range locs {
		if r.Skip != nil && r.Skip(src, loc) {
			continue
		}
		b.WriteString(src[last:loc[0]])
		b.Write(r.Pattern.ExpandString(nil, r.Template, src, loc))
		last = loc[1]
		count++
	}
	if count == 0 {
		return src, 0
	}
	b.WriteString(src[last:])
	return b.String(), count
}
