// Package ingest provides pipeline orchestration for loading doubles into
// the search backends.
//
// Doubles are parsed from CSV exports (Loader) and written concurrently to
// both stores (Pipeline): the graph store gets the double node with its
// product relationships, the vector store gets an embedding of the double's
// description. Processing uses a worker pool to maximize throughput.
//
// Per-double errors are logged and counted but do not stop the batch; a
// partially ingested dataset is still searchable.
package ingest
