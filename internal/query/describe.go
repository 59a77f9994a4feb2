package query

import (
	"fmt"
	"strings"
)

// Describe renders a clause for display.
func Describe(p SearchParam) string {
	switch p.Type {
	case SearchText:
		return fmt.Sprintf("name is %q", p.Value)
	case SearchRelation:
		return fmt.Sprintf("has relation %q", p.Value)
	case SearchProperty:
		var verb string
		switch p.Operation {
		case OpEqual:
			verb = "is"
		case OpGreater:
			verb = "is greater than"
		case OpLess:
			verb = "is less than"
		case OpGreaterEqual:
			verb = "is at least"
		case OpLessEqual:
			verb = "is at most"
		default:
			verb = string(p.Operation)
		}
		return fmt.Sprintf("%s %s %q", p.Key, verb, p.Value)
	}
	return fmt.Sprintf("unknown search %q", p.Type)
}

// DescribeAll joins clause descriptions with "and".
func DescribeAll(ps []SearchParam) string {
	if len(ps) == 0 {
		return "everything"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = Describe(p)
	}
	return strings.Join(parts, "\nand ")
}

// DescribeSort renders a sort clause for display.
func DescribeSort(p SortParam) string {
	if p.Type == SortProperty {
		return fmt.Sprintf("property %s %s", p.Value, p.Order)
	}
	return fmt.Sprintf("%s %s", p.Type, p.Order)
}
