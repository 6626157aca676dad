// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument indicates a caller contract violation: bad top_k,
// both or neither of text/filter supplied, negative weights. Wrap it with
// InvalidArgumentf so callers can test with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentf builds an argument error wrapping ErrInvalidArgument.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ValidationError reports a malformed or unknown filter shape.
// Path pinpoints the offending nested key, e.g. "products.UnknownType".
type ValidationError struct {
	Reason string
	Path   string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "filter validation: " + e.Reason
	}
	return fmt.Sprintf("filter validation: %s (at %s)", e.Reason, e.Path)
}

// TranslationKind distinguishes the two terminal translator failures.
type TranslationKind int

const (
	// TranslationUnparseable means the model response could not be parsed as
	// structured data, even after the formatting retry.
	TranslationUnparseable TranslationKind = iota + 1
	// TranslationSchemaViolation means the response parsed but still failed
	// schema validation after the bounded repair pass.
	TranslationSchemaViolation
)

func (k TranslationKind) String() string {
	switch k {
	case TranslationUnparseable:
		return "unparseable"
	case TranslationSchemaViolation:
		return "schema violation"
	default:
		return fmt.Sprintf("translation(%d)", int(k))
	}
}

// TranslationError reports that the language-model output was unusable after
// the retry and repair sequence was exhausted.
type TranslationError struct {
	Kind   TranslationKind
	Detail string
	Err    error
}

func (e *TranslationError) Error() string {
	msg := fmt.Sprintf("query translation failed (%s): %s", e.Kind, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// Source names a search backend in execution errors and partial results.
type Source string

const (
	SourceGraph  Source = "graph"
	SourceVector Source = "vector"
)

// ExecutionError reports a backend store failure: unreachable store, failed
// query, failed embedding, or an exceeded per-backend timeout.
type ExecutionError struct {
	Source Source
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s execution failed: %v", e.Source, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
