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


package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/bookvec/core"
)

// float32Size is the encoded width of one vector component.
const float32Size = 4

// MarshalPoint serializes a Point to bytes.
// Metadata keys are written in sorted order so equal points encode identically.
func MarshalPoint(p *core.Point) []byte {
	buf := make([]byte, pointSize(p))
	n := ord.String.Marshal(p.ID, buf)
	n += marshalTime(p.UpdatedAt, buf[n:])
	n += varint.Int.Marshal(len(p.Values), buf[n:])
	for _, v := range p.Values {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	keys := sortedKeys(p.Metadata)
	n += varint.Int.Marshal(len(keys), buf[n:])
	for _, k := range keys {
		n += ord.String.Marshal(k, buf[n:])
		n += ord.String.Marshal(p.Metadata[k], buf[n:])
	}
	return buf
}

// UnmarshalPoint deserializes a Point from bytes.
func UnmarshalPoint(data []byte) (*core.Point, error) {
	var (
		p   core.Point
		n   int
		err error
	)
	if p.ID, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	if p.UpdatedAt, n, err = unmarshalTime(data, n); err != nil {
		return nil, err
	}

	count, n, err := unmarshalLength(data, n, float32Size)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		p.Values = make([]float32, count)
		for i := range p.Values {
			v, m, err := raw.Float32.Unmarshal(data[n:])
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
			}
			p.Values[i] = v
			n += m
		}
	}

	// Each metadata entry takes at least two bytes of length prefix.
	count, n, err = unmarshalLength(data, n, 2)
	if err != nil {
		return nil, err
	}
	p.Metadata = make(map[string]string, count)
	for i := 0; i < count; i++ {
		var k, v string
		if k, n, err = unmarshalString(data, n); err != nil {
			return nil, err
		}
		if v, n, err = unmarshalString(data, n); err != nil {
			return nil, err
		}
		p.Metadata[k] = v
	}
	return &p, nil
}

// MarshalIndexSpec serializes an IndexSpec to bytes.
func MarshalIndexSpec(spec *core.IndexSpec) []byte {
	size := ord.String.Size(spec.Name) +
		varint.Int.Size(spec.Dimension) +
		ord.String.Size(spec.Metric) +
		timeSize(spec.CreatedAt)
	buf := make([]byte, size)
	n := ord.String.Marshal(spec.Name, buf)
	n += varint.Int.Marshal(spec.Dimension, buf[n:])
	n += ord.String.Marshal(spec.Metric, buf[n:])
	marshalTime(spec.CreatedAt, buf[n:])
	return buf
}

// UnmarshalIndexSpec deserializes an IndexSpec from bytes.
func UnmarshalIndexSpec(data []byte) (*core.IndexSpec, error) {
	var (
		spec core.IndexSpec
		n    int
		err  error
	)
	if spec.Name, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	dim, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	spec.Dimension = dim
	n += m
	if spec.Metric, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	if spec.CreatedAt, _, err = unmarshalTime(data, n); err != nil {
		return nil, err
	}
	return &spec, nil
}

func pointSize(p *core.Point) int {
	size := ord.String.Size(p.ID) + timeSize(p.UpdatedAt)
	size += varint.Int.Size(len(p.Values)) + len(p.Values)*float32Size
	size += varint.Int.Size(len(p.Metadata))
	for k, v := range p.Metadata {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	return size
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Timestamps are stored as Unix microseconds. The zero time is stored as 0.
func unixMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func timeSize(t time.Time) int {
	return varint.Int64.Size(unixMicro(t))
}

func marshalTime(t time.Time, buf []byte) int {
	return varint.Int64.Marshal(unixMicro(t), buf)
}

func unmarshalTime(data []byte, n int) (time.Time, int, error) {
	micros, m, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return time.Time{}, n, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if micros == 0 {
		return time.Time{}, n + m, nil
	}
	return time.UnixMicro(micros).UTC(), n + m, nil
}

func unmarshalString(data []byte, n int) (string, int, error) {
	s, m, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return "", n, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return s, n + m, nil
}

// unmarshalLength reads a collection length and rejects lengths the remaining
// bytes cannot hold at minSize bytes per element.
func unmarshalLength(data []byte, n, minSize int) (int, int, error) {
	count, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return 0, n, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += m
	if count < 0 || count > (len(data)-n)/minSize {
		return 0, n, fmt.Errorf("%w: length %d exceeds remaining %d bytes", ErrTruncatedData, count, len(data)-n)
	}
	return count, n, nil
}

// MarshalVector encodes vector components as fixed-width floats with no length prefix.
// A nil or empty vector encodes to nil.
func MarshalVector(values []float32) []byte {
	if len(values) == 0 {
		return nil
	}
	buf := make([]byte, len(values)*float32Size)
	n := 0
	for _, v := range values {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalVector decodes bytes written by MarshalVector.
func UnmarshalVector(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data)%float32Size != 0 {
		return nil, fmt.Errorf("%w: vector of %d bytes", ErrTruncatedData, len(data))
	}
	values := make([]float32, len(data)/float32Size)
	n := 0
	for i := range values {
		v, m, err := raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		values[i] = v
		n += m
	}
	return values, nil
}
