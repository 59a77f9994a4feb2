// Package collectioninfo persists the singleton metadata row of a collection
// namespace (table collection_info, id 1).
package collectioninfo
