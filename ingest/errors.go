package ingest

import "errors"

var (
	// ErrGraphWriterRequired is returned when a graph writer is not provided.
	ErrGraphWriterRequired = errors.New("graph writer required")

	// ErrVectorWriterRequired is returned when a vector writer is not provided.
	ErrVectorWriterRequired = errors.New("vector writer required")

	// ErrMissingHeader is returned when the CSV lacks the identifier column.
	ErrMissingHeader = errors.New("csv is missing the unique_identifier column")
)
