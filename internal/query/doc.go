// Package query filters and orders characters.
//
// A search is a list of SearchParam clauses combined with logical AND plus
// one SortParam. Each clause is resolved through a Finder (in memory or
// against the namespace indexes); the lookups run concurrently and the
// results are intersected by character id. An empty clause list means "no
// filter", not "no results".
//
//	ev := query.NewEvaluator(query.SliceFinder(all), query.WithLanguage(language.Korean))
//	out, err := ev.Evaluate(ctx, all, []query.SearchParam{
//	    {Type: query.SearchProperty, Operation: query.OpGreater, Key: "age", Value: "15"},
//	}, query.SortParam{Type: query.SortName, Order: query.Asc})
package query
