package query

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// Evaluator filters and sorts characters.
type Evaluator struct {
	finder Finder
	lang   language.Tag
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLanguage sets the collation language used for string sort keys.
func WithLanguage(tag language.Tag) Option {
	return func(e *Evaluator) { e.lang = tag }
}

// NewEvaluator returns an Evaluator resolving clauses through finder.
func NewEvaluator(finder Finder, opts ...Option) *Evaluator {
	e := &Evaluator{finder: finder, lang: language.Und}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate returns the characters of base matching every clause, ordered by
// sort. base is not modified. With no clauses the whole base set is returned.
// Survivors keep their base order before sorting, so the result does not
// depend on clause order.
func (e *Evaluator) Evaluate(ctx context.Context, base []models.Character, clauses []SearchParam, sort SortParam) ([]models.Character, error) {
	if len(clauses) == 0 {
		out := make([]models.Character, len(base))
		copy(out, base)
		e.Sort(out, sort)
		return out, nil
	}

	sets := make([]map[int64]struct{}, len(clauses))
	g, gctx := errgroup.WithContext(ctx)
	for i, clause := range clauses {
		g.Go(func() error {
			found, err := e.match(gctx, clause)
			if err != nil {
				return err
			}
			set := make(map[int64]struct{}, len(found))
			for _, c := range found {
				set[c.ID] = struct{}{}
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Character, 0)
	for _, c := range base {
		if inAll(sets, c.ID) {
			out = append(out, c)
		}
	}
	e.Sort(out, sort)
	return out, nil
}

func inAll(sets []map[int64]struct{}, id int64) bool {
	for _, s := range sets {
		if _, ok := s[id]; !ok {
			return false
		}
	}
	return true
}

// match resolves a single clause. Malformed clauses match nothing.
func (e *Evaluator) match(ctx context.Context, p SearchParam) ([]models.Character, error) {
	switch p.Type {
	case SearchText:
		return e.finder.WhereNameEqualFold(ctx, p.Value)
	case SearchRelation:
		return e.finder.WhereRelationLabel(ctx, p.Value)
	case SearchProperty:
		if p.Key == "" {
			return nil, nil
		}
		candidates, err := e.finder.WherePropertyKey(ctx, p.Key)
		if err != nil {
			return nil, err
		}
		var out []models.Character
		for i := range candidates {
			v, ok := candidates[i].Property(p.Key)
			if ok && compare(v, p.Operation, p.Value) {
				out = append(out, candidates[i])
			}
		}
		return out, nil
	default:
		return nil, nil
	}
}

// compare applies op to a stored property value. Ordering operators compare
// the leading numbers of both sides, so "180cm" counts as 180; a side with no
// leading number is a non-match.
func compare(stored string, op Operation, want string) bool {
	if op == OpEqual {
		return stored == want
	}
	if !op.ordering() {
		return false
	}

	a, ok := parseNumber(stored)
	if !ok {
		return false
	}
	b, ok := parseNumber(want)
	if !ok {
		return false
	}

	switch op {
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	}
	return false
}

// parseNumber reads the longest decimal number at the start of s, after
// leading white space. Trailing text is ignored.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	n := numberPrefix(s)
	if n == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:n], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// numberPrefix returns the length of the number s starts with:
// [sign] (Infinity | digits [. digits] | . digits) [e [sign] digits].
func numberPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return i + len("Infinity")
	}

	start := i
	i = skipDigits(s, i)
	mantissa := i - start
	if i < len(s) && s[i] == '.' {
		j := skipDigits(s, i+1)
		mantissa += j - i - 1
		if mantissa > 0 {
			i = j
		}
	}
	if mantissa == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if k := skipDigits(s, j); k > j {
			i = k
		}
	}
	return i
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
