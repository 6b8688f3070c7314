// Package jsondoc is a small handle-style wrapper around the tidwall JSON
// libraries (gjson for reads, sjson for writes, pretty for printing).
//
// A Document owns a private copy of its JSON text. Reads never allocate a
// parse tree; writes rewrite the text in place. Keys are treated as literal
// object member names, so characters that gjson or sjson give special meaning
// to (dots, wildcards, modifiers) are escaped before use.
//
// Released documents answer every query as absent and refuse every write.
//
// Thread Safety:
//   - A Document is not safe for concurrent mutation. Callers that share one
//     across goroutines must provide their own locking.
package jsondoc
