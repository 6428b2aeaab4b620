// Package memstore is an in-memory storage engine.
//
// Tables are paged heaps: rows are packed into fixed-capacity pages sized
// from the row width, and a row's location encodes its page and slot.
// Indexes keep encoded key images either in xxhash buckets or in key order.
//
// Every row and index entry written by a transaction is tagged with its
// owner until commit. Other transactions do not see it; abort discards it.
package memstore
