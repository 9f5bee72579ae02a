package imports

import (
	"sort"
	"strings"
)

// Partition is the leading import section of a file split into buckets, plus
// everything after it.
type Partition struct {
	Buckets [numCategories][]string
	Body    []string
}

// Bucket returns the import lines of one category
func (p *Partition) Bucket(c Category) []string {
	return p.Buckets[c]
}

// Len returns the number of import lines across all buckets
func (p *Partition) Len() int {
	n := 0
	for _, b := range p.Buckets {
		n += len(b)
	}
	return n
}

// Split scans lines from the top. Import lines and blank lines belong to the
// import section until the first other line; from there on every line is body,
// including import-looking ones. Blank lines inside the section are dropped.
func Split(lines []string) *Partition {
	p := &Partition{}
	inImports := true
	for _, line := range lines {
		if inImports {
			if IsImport(line) {
				c := Classify(line)
				p.Buckets[c] = append(p.Buckets[c], line)
				continue
			}
			if IsBlank(line) {
				continue
			}
			inImports = false
		}
		p.Body = append(p.Body, line)
	}
	return p
}

// Sort orders each bucket by its full line text
func (p *Partition) Sort() {
	for c := range p.Buckets {
		sort.Strings(p.Buckets[c])
	}
}

// Assemble emits the non-empty buckets in category order, each followed by a
// single blank line, then the body unchanged. Empty buckets emit nothing.
func (p *Partition) Assemble() []string {
	out := make([]string, 0, p.Len()+int(numCategories)+len(p.Body))
	for _, c := range Categories() {
		if len(p.Buckets[c]) == 0 {
			continue
		}
		out = append(out, p.Buckets[c]...)
		out = append(out, "")
	}
	return append(out, p.Body...)
}

// Reorder groups and sorts the leading import section of lines
func Reorder(lines []string) []string {
	p := Split(lines)
	p.Sort()
	return p.Assemble()
}

// ReorderContent applies Reorder to a whole file held in memory. CRLF files
// keep their line endings.
func ReorderContent(content string) string {
	eol := "\n"
	if strings.Contains(content, "\r\n") {
		eol = "\r\n"
	}
	return strings.Join(Reorder(strings.Split(content, eol)), eol)
}
