// Package tweet decodes newline-delimited tweet JSON into records ready for
// insertion.
//
// The source data is messy: string fields may carry the literal "NULL" or be
// empty, numeric fields occasionally arrive as strings, and many lines are
// not valid JSON at all. Decoding normalizes all of these; lines that cannot
// yield a keyed tweet and author are reported as malformed and skipped by
// callers.
package tweet
