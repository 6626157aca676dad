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


package cache

import (
	"errors"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/doublesearch/core"
)

// ErrMalformedFilter is returned when cached bytes cannot be decoded.
var ErrMalformedFilter = errors.New("malformed filter data")

// FilterMUS is the MUS format serializer for core.Filter. Variants are
// written in sorted order so equal filters always serialize to equal bytes.
var FilterMUS = filterMUS{}

type filterMUS struct{}

func (s filterMUS) Marshal(f core.Filter, bs []byte) (n int) {
	types := f.ProductTypes()
	n = varint.Int.Marshal(len(types), bs)
	for _, t := range types {
		n += ord.String.Marshal(string(t), bs[n:])
		n += predicateMUS{}.Marshal(f.Products[t], bs[n:])
	}
	return n
}

func (s filterMUS) Unmarshal(bs []byte) (f core.Filter, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if count < 0 {
		err = ErrMalformedFilter
		return
	}
	f.Products = make(map[core.ProductType]core.Predicate, count)
	for i := 0; i < count; i++ {
		var (
			name      string
			predicate core.Predicate
			n1        int
		)
		name, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		predicate, n1, err = predicateMUS{}.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		f.Products[core.ProductType(name)] = predicate
	}
	return
}

func (s filterMUS) Size(f core.Filter) (size int) {
	types := f.ProductTypes()
	size = varint.Int.Size(len(types))
	for _, t := range types {
		size += ord.String.Size(string(t))
		size += predicateMUS{}.Size(f.Products[t])
	}
	return size
}

type predicateMUS struct{}

func (s predicateMUS) Marshal(p core.Predicate, bs []byte) (n int) {
	n = varint.Int.Marshal(int(p.Kind), bs)
	n += ord.Bool.Marshal(p.Exists, bs[n:])
	n += marshalOptionalFloat(p.Min, bs[n:])
	n += marshalOptionalFloat(p.Max, bs[n:])
	n += raw.Float64.Marshal(p.Equals, bs[n:])
	return n
}

func (s predicateMUS) Unmarshal(bs []byte) (p core.Predicate, n int, err error) {
	var n1 int

	kind, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	p.Kind = core.PredicateKind(kind)

	p.Exists, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	p.Min, n1, err = unmarshalOptionalFloat(bs[n:])
	n += n1
	if err != nil {
		return
	}

	p.Max, n1, err = unmarshalOptionalFloat(bs[n:])
	n += n1
	if err != nil {
		return
	}

	p.Equals, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	return
}

func (s predicateMUS) Size(p core.Predicate) (size int) {
	size = varint.Int.Size(int(p.Kind))
	size += ord.Bool.Size(p.Exists)
	size += sizeOptionalFloat(p.Min)
	size += sizeOptionalFloat(p.Max)
	size += raw.Float64.Size(p.Equals)
	return size
}

func marshalOptionalFloat(v *float64, bs []byte) (n int) {
	n = ord.Bool.Marshal(v != nil, bs)
	if v != nil {
		n += raw.Float64.Marshal(*v, bs[n:])
	}
	return n
}

func unmarshalOptionalFloat(bs []byte) (v *float64, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return
	}
	f, n1, err := raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	return &f, n, nil
}

func sizeOptionalFloat(v *float64) (size int) {
	size = ord.Bool.Size(v != nil)
	if v != nil {
		size += raw.Float64.Size(*v)
	}
	return size
}

// MarshalFilter serializes a Filter to bytes.
func MarshalFilter(f *core.Filter) []byte {
	buf := make([]byte, FilterMUS.Size(*f))
	FilterMUS.Marshal(*f, buf)
	return buf
}

// UnmarshalFilter deserializes a Filter from bytes.
func UnmarshalFilter(data []byte) (*core.Filter, error) {
	f, _, err := FilterMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
