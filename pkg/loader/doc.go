// Package loader populates tables and secondary indexes from declarative
// specs.
//
// FillTable is the batched loader: it splits a table's row count into
// batches, generates every column of a batch with package datagen,
// assembles rows in the table's physical layout and inserts them one at a
// time through the caller's transaction. FillIndex is the index populator:
// it scans a populated table, projects each row onto the index key layout
// and inserts the key.
//
// Generator ties both to a catalog and a storage engine and is what the CLI
// drives. It owns the transactions, the per-table randomness and the
// parallel schedule of a whole run.
package loader
