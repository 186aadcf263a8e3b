package convert

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DelimiterMode selects how the cell-value delimiter is interpreted.
type DelimiterMode string

const (
	// ModeChars treats every rune of the delimiter as a separator of its own.
	// A backslash takes the following rune literally, so `/\(\)` separates
	// on '/', '(' and ')'.
	ModeChars DelimiterMode = "chars"

	// ModeRegexp treats the delimiter as a regular expression.
	ModeRegexp DelimiterMode = "regexp"

	// ModeLiteral matches the delimiter string verbatim.
	ModeLiteral DelimiterMode = "literal"
)

// ValidModes lists the accepted DelimiterMode values.
var ValidModes = []DelimiterMode{ModeChars, ModeRegexp, ModeLiteral}

// DefaultDelimiter separates multiple values on '/', '(' and ')'.
const DefaultDelimiter = `/\(\)`

// Splitter splits cells into values.
type Splitter interface {
	// Split returns every segment of s, blank ones included.
	Split(s string) []string

	// Contains reports whether s holds at least one separator.
	Contains(s string) bool
}

// NewSplitter builds the Splitter for delimiter in the given mode.
// An empty mode means ModeChars.
func NewSplitter(delimiter string, mode DelimiterMode) (Splitter, error) {
	if delimiter == "" {
		return nil, fmt.Errorf("cell value delimiter must not be empty")
	}

	switch mode {
	case "", ModeChars:
		return newCharSplitter(delimiter), nil
	case ModeRegexp:
		re, err := regexp.Compile(delimiter)
		if err != nil {
			return nil, fmt.Errorf("invalid cell value delimiter: %w", err)
		}
		if re.MatchString("") {
			return nil, fmt.Errorf("cell value delimiter %q matches the empty string", delimiter)
		}
		return regexpSplitter{re: re}, nil
	case ModeLiteral:
		return literalSplitter(delimiter), nil
	default:
		return nil, fmt.Errorf("invalid delimiter mode %q: must be one of %v", mode, ValidModes)
	}
}

type charSplitter struct {
	set map[rune]bool
}

func newCharSplitter(delimiter string) charSplitter {
	s := charSplitter{set: make(map[rune]bool)}
	escaped := false
	for _, r := range delimiter {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		s.set[r] = true
		escaped = false
	}
	// A trailing lone backslash is a separator itself.
	if escaped {
		s.set['\\'] = true
	}
	return s
}

func (s charSplitter) isSep(r rune) bool {
	return s.set[r]
}

func (s charSplitter) Split(v string) []string {
	var out []string
	start := 0
	for i, r := range v {
		if s.set[r] {
			out = append(out, v[start:i])
			start = i + utf8.RuneLen(r)
		}
	}
	return append(out, v[start:])
}

func (s charSplitter) Contains(v string) bool {
	return strings.IndexFunc(v, s.isSep) >= 0
}

type regexpSplitter struct {
	re *regexp.Regexp
}

func (s regexpSplitter) Split(v string) []string {
	return s.re.Split(v, -1)
}

func (s regexpSplitter) Contains(v string) bool {
	return s.re.MatchString(v)
}

type literalSplitter string

func (s literalSplitter) Split(v string) []string {
	return strings.Split(v, string(s))
}

func (s literalSplitter) Contains(v string) bool {
	return strings.Contains(v, string(s))
}

// values returns the non-blank segments of cell.
func values(sp Splitter, cell string) []string {
	var out []string
	for _, seg := range sp.Split(cell) {
		if !isBlank(seg) {
			out = append(out, seg)
		}
	}
	return out
}
