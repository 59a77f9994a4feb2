package query

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/charkeeper/internal/common"
)

// SearchType selects what a clause matches against.
type SearchType string

const (
	SearchText     SearchType = "text"
	SearchProperty SearchType = "property"
	SearchRelation SearchType = "relation"
)

// Operation is the comparison used by a property clause.
type Operation string

const (
	OpEqual        Operation = "="
	OpGreater      Operation = ">"
	OpLess         Operation = "<"
	OpGreaterEqual Operation = ">="
	OpLessEqual    Operation = "<="
)

func (o Operation) ordering() bool {
	switch o {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return true
	}
	return false
}

// SearchParam is one search clause.
type SearchParam struct {
	Type      SearchType
	Operation Operation
	Key       string
	Value     string
}

// Validate reports clauses the evaluator would silently treat as matching
// nothing.
func (p SearchParam) Validate() error {
	switch p.Type {
	case SearchText, SearchRelation:
		if p.Operation != "" && p.Operation != OpEqual {
			return fmt.Errorf("%w: %s search only supports =", common.ErrValidation, p.Type)
		}
	case SearchProperty:
		if p.Key == "" {
			return fmt.Errorf("%w: property search needs a property name", common.ErrValidation)
		}
		if p.Operation != OpEqual && !p.Operation.ordering() {
			return fmt.Errorf("%w: unknown operation %q", common.ErrValidation, p.Operation)
		}
	default:
		return fmt.Errorf("%w: unknown search type %q", common.ErrValidation, p.Type)
	}
	if p.Value == "" {
		return fmt.Errorf("%w: search value is empty", common.ErrValidation)
	}
	return nil
}

// ParseSearchParam reads the textual clause forms used by the CLI:
//
//	text <name>
//	relation <label>
//	property <key> <op> <value>
//
// A bare "<key><op><value>" (e.g. "age>=15") is shorthand for a property clause.
func ParseSearchParam(s string) (SearchParam, error) {
	s = strings.TrimSpace(s)
	head, rest, _ := strings.Cut(s, " ")
	rest = strings.TrimSpace(rest)

	var p SearchParam
	switch SearchType(head) {
	case SearchText, SearchRelation:
		p = SearchParam{Type: SearchType(head), Operation: OpEqual, Value: rest}
	case SearchProperty:
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return SearchParam{}, fmt.Errorf("%w: expected property <key> <op> <value>", common.ErrValidation)
		}
		p = SearchParam{
			Type:      SearchProperty,
			Key:       fields[0],
			Operation: Operation(fields[1]),
			Value:     strings.Join(fields[2:], " "),
		}
	default:
		var ok bool
		if p, ok = parseShorthand(s); !ok {
			return SearchParam{}, fmt.Errorf("%w: cannot parse search %q", common.ErrValidation, s)
		}
	}
	return p, p.Validate()
}

// parseShorthand splits "key<op>value" at the first operator in s, so the
// value may itself contain operator characters.
func parseShorthand(s string) (SearchParam, bool) {
	i := strings.IndexAny(s, "<>=")
	if i < 0 {
		return SearchParam{}, false
	}
	op := Operation(s[i : i+1])
	if op != OpEqual && strings.HasPrefix(s[i+1:], "=") {
		op += "="
	}
	key := strings.TrimSpace(s[:i])
	value := strings.TrimSpace(s[i+len(op):])
	if key == "" {
		return SearchParam{}, false
	}
	return SearchParam{Type: SearchProperty, Operation: op, Key: key, Value: value}, true
}

// SortType selects the sort key.
type SortType string

const (
	SortName      SortType = "name"
	SortCreatedAt SortType = "createdAt"
	SortUpdatedAt SortType = "updatedAt"
	SortProperty  SortType = "property"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// SortParam describes the ordering of results. Value names the property for
// SortProperty.
type SortParam struct {
	Type  SortType
	Order Order
	Value string
}

// DefaultSort is oldest first.
var DefaultSort = SortParam{Type: SortCreatedAt, Order: Asc}

// ParseSortParam reads "<type> [asc|desc]" or "property <name> [asc|desc]".
func ParseSortParam(s string) (SortParam, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return DefaultSort, nil
	}

	p := SortParam{Type: SortType(fields[0]), Order: Asc}
	rest := fields[1:]

	switch p.Type {
	case SortName, SortCreatedAt, SortUpdatedAt:
	case SortProperty:
		if len(rest) == 0 {
			return SortParam{}, fmt.Errorf("%w: property sort needs a property name", common.ErrValidation)
		}
		p.Value = rest[0]
		rest = rest[1:]
	default:
		return SortParam{}, fmt.Errorf("%w: unknown sort %q", common.ErrValidation, fields[0])
	}

	if len(rest) > 0 {
		switch Order(rest[0]) {
		case Asc, Desc:
			p.Order = Order(rest[0])
		default:
			return SortParam{}, fmt.Errorf("%w: unknown order %q", common.ErrValidation, rest[0])
		}
	}
	return p, nil
}
