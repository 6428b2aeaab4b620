// Package datagen synthesizes typed column batches for bulk table loads.
//
// A TableSpec declares the columns of one table and how each one is filled:
//
//   - Uniform draws independent values from the inclusive range [Min, Max].
//   - Serial emits consecutive values from a counter that starts at Min and
//     persists across batches of one load.
//   - Rotate walks a cursor shared by every Rotate column of the load,
//     wrapping back to Min after Max, and shuffles each batch.
//
// Clone columns are never generated; the loader aliases the batch of the
// column they reference.
//
// All cross-call state other than the Serial counters lives in a Context,
// which also owns the random source. A Context is not safe for concurrent
// use; each table load gets its own.
package datagen
