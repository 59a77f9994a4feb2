// Package characters provides the persistence layer for the characters of a
// collection namespace.
//
// # Data Model
//
// A character row lives in the characters table. Its ordered properties,
// tags and relations live in child tables keyed by (character_id, position),
// which keeps duplicate names and insertion order intact. Writes that touch
// several tables run in a single transaction via dbx.WithTx.
//
// Lookup methods (WhereNameEqualFold, WherePropertyKey, WhereRelationLabel,
// WhereTag, AnyOf) use the secondary indexes declared by the namespace
// migration and always return characters ordered by id.
//
// Typical Usage
//
//	repo := characters.NewSQLiteRepository(db)
//	id, _ := repo.Add(ctx, &models.Character{Name: "Alice"})
//	one, _ := repo.Get(ctx, id)
//	adults, _ := repo.WherePropertyKey(ctx, "age")
//	_ = repo.Delete(ctx, id)
package characters
