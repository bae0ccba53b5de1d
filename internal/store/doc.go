// Package store owns the relational schema and all SQL issued against it:
// row-at-a-time and batched inserts, COPY-based staging, the per-user
// location aggregation, and table exports.
//
// Inserts are idempotent (ON CONFLICT DO NOTHING) so that repeated loads of
// the same source, and the shared user/geo rows within one source, collapse
// cleanly. Statement errors abort the operation and surface to the caller;
// there is no partial-success bookkeeping.
package store
