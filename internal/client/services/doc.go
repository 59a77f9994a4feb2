// Package services implements the collection and character use cases on top
// of the namespace store, the query evaluator, the archive workers and the
// optional backup bucket.
//
// Every character mutation and every metadata update refreshes the
// collection's updated_at so that Recent lists the last touched collection
// first. Errors that are not domain outcomes (see common.IsExpected) are
// logged and reported to telemetry before being returned.
package services
