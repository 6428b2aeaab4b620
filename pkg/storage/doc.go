// Package storage defines the contracts the loader drives: transactions,
// row-oriented tables and secondary indexes.
//
// Rows cross the boundary as layout.ProjectedRow values shaped by the
// table's or index's OffsetMap. Engines copy rows in on Insert and out on
// Select; they never keep a caller's buffer.
//
// # Engines
//
//   - [tablegen/pkg/storage/memstore] – in-memory paged heap tables with hash
//     and ordered indexes. Uncommitted rows are visible only to their writer.
//   - [tablegen/pkg/storage/boltstore] – bbolt-backed tables and indexes, one
//     bucket each, one bbolt transaction per storage transaction.
//
// # Row images
//
// Engines that serialize rows use EncodeRow: the null bitmap as
// little-endian 32-bit words followed by the fixed-width data region.
package storage
