// Copyright 2025 EngFlow Inc. All rights reserved.
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

// Package buffer provides a growable byte container that owns source text
// read from disk. The lexer copies each token's lexeme out of the Buffer
// into the token's own string; tokens hold no reference into a Buffer.
package buffer

import (
	"fmt"
	"os"
)

// Buffer is a growable, owned byte container.
type Buffer struct {
	data []byte
}

// New returns an empty Buffer with the given initial capacity hint.
func New(capHint int) *Buffer {
	return &Buffer{data: make([]byte, 0, capHint)}
}

// Read slurps the named file into a new Buffer.
func Read(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("buffer: read %s: %w", path, err)
	}
	return &Buffer{data: data}, nil
}

// Bytes returns the buffer's current contents. The returned slice aliases
// the buffer's backing array and is invalidated by any subsequent Append*
// call that grows capacity.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the number of bytes currently stored.
func (b *Buffer) Len() int { return len(b.data) }

// Slice returns the byte range [off, off+n), a non-owning view into the
// buffer's backing array.
func (b *Buffer) Slice(off, n int) []byte { return b.data[off : off+n] }

// Append appends raw bytes.
func (b *Buffer) Append(p []byte) { b.data = append(b.data, p...) }

// AppendString appends a string.
func (b *Buffer) AppendString(s string) { b.data = append(b.data, s...) }

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) { b.data = append(b.data, c) }

// AppendFormat appends the result of fmt.Sprintf(format, args...).
func (b *Buffer) AppendFormat(format string, args ...any) {
	b.data = fmt.Appendf(b.data, format, args...)
}

// Reset truncates the buffer to zero length without releasing capacity.
func (b *Buffer) Reset() { b.data = b.data[:0] }

// Compare performs a lexicographic byte comparison, returning <0, 0, or >0.
func (b *Buffer) Compare(other *Buffer) int {
	switch {
	case string(b.data) < string(other.data):
		return -1
	case string(b.data) > string(other.data):
		return 1
	default:
		return 0
	}
}

// String implements fmt.Stringer.
func (b *Buffer) String() string { return string(b.data) }
