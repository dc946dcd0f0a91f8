// Package todo stores the ordered task list in a key-value store.
//
// The list is persisted under a single key (default "tasks") as a JSON array
// of strings:
//
//	["buy milk","call sam"]
//
// An absent key is an empty list. Clear removes the key rather than writing
// "[]"; both read back as an empty list.
//
// # Validation
//
// Persisted values are checked against an embedded JSON Schema
// (an array whose items are strings). A value that is not JSON, or that
// fails the schema, is logged and read as an empty list. Only failures of the
// underlying store are returned to callers.
//
// # Duplicates
//
// Tasks are plain strings and duplicates are allowed. RemoveFirstMatching is
// keyed by content and removes only the first equal entry; RemoveAt removes
// a known position and is what interactive deletion uses.
package todo
