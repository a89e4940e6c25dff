// Package search compiles user queries into title matchers for the tree
// filter.
package search

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
)

// Mode selects how a query is matched against titles.
type Mode string

const (
	ModeSubstring Mode = "substring"
	ModeFuzzy     Mode = "fuzzy"
	ModeRegex     Mode = "regex"
)

// ErrInvalidQuery is returned for unknown modes and bad patterns.
var ErrInvalidQuery = errors.Base("invalid query")

// ParseMode parses a mode name. The empty string selects substring.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSubstring:
		return ModeSubstring, nil
	case ModeFuzzy:
		return ModeFuzzy, nil
	case ModeRegex:
		return ModeRegex, nil
	}
	return "", errors.Errorf("%w: unknown search mode %q", ErrInvalidQuery, s)
}

// Expr matches a single title.
type Expr interface {
	Matches(title string) bool
	String() string // For debug output
}

// TextExpr matches titles containing the term. Case matters.
type TextExpr struct {
	term string
}

func NewTextExpr(term string) *TextExpr {
	return &TextExpr{term: term}
}

func (e *TextExpr) Matches(title string) bool {
	return strings.Contains(title, e.term)
}

func (e *TextExpr) String() string {
	return fmt.Sprintf("text(%q)", e.term)
}

// FuzzyExpr matches titles containing the characters of the term in order,
// ignoring case.
type FuzzyExpr struct {
	term string
}

func NewFuzzyExpr(term string) *FuzzyExpr {
	return &FuzzyExpr{term: term}
}

func (e *FuzzyExpr) Matches(title string) bool {
	return fuzzy.MatchFold(e.term, title)
}

func (e *FuzzyExpr) String() string {
	return fmt.Sprintf("fuzzy(%q)", e.term)
}

// Rank returns the indexes of the matching titles ordered by fuzzy distance
// to the term, best first. Equal distances keep their input order.
func (e *FuzzyExpr) Rank(titles []string) []int {
	ranks := fuzzy.RankFindFold(e.term, titles)
	sort.Stable(ranks)
	out := make([]int, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.OriginalIndex)
	}
	return out
}

// RegexExpr matches titles against a regular expression.
type RegexExpr struct {
	pattern string
	re      *regexp.Regexp
}

func NewRegexExpr(pattern string) (*RegexExpr, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalidQuery, err.Error())
	}
	return &RegexExpr{pattern: pattern, re: re}, nil
}

func (e *RegexExpr) Matches(title string) bool {
	return e.re.MatchString(title)
}

func (e *RegexExpr) String() string {
	return fmt.Sprintf("regex(/%s/)", e.pattern)
}

// Parse builds the expression for query in the given mode.
func Parse(mode Mode, query string) (Expr, error) {
	switch mode {
	case ModeSubstring, "":
		return NewTextExpr(query), nil
	case ModeFuzzy:
		return NewFuzzyExpr(query), nil
	case ModeRegex:
		return NewRegexExpr(query)
	}
	return nil, errors.Errorf("%w: unknown search mode %q", ErrInvalidQuery, mode)
}

// Compile returns a matcher for the tree filter. An empty query yields a nil
// matcher, which shows every item.
func Compile(mode Mode, query string) (model.MatchFunc, error) {
	if query == "" {
		return nil, nil
	}
	expr, err := Parse(mode, query)
	if err != nil {
		return nil, err
	}
	return expr.Matches, nil
}
