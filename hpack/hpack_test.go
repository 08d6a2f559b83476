// SPDX-License-Identifier: GPL-3.0-or-later

package hpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTableIndexing(t *testing.T) {
	f, err := (&Decoder{dynTable: newDynamicTable(0)}).lookup(1)
	require.NoError(t, err)
	assert.Equal(t, ":authority", f.Name)
	assert.Equal(t, "", f.Value)

	f, err = (&Decoder{dynTable: newDynamicTable(0)}).lookup(19)
	require.NoError(t, err)
	assert.Equal(t, "accept", f.Name)

	f, err = (&Decoder{dynTable: newDynamicTable(0)}).lookup(61)
	require.NoError(t, err)
	assert.Equal(t, "www-authenticate", f.Name)
}

func TestDynamicTableEvictsOldestFirst(t *testing.T) {
	dt := newDynamicTable(64)
	dt.add(HeaderField{Name: "a", Value: "1"}) // size 34
	dt.add(HeaderField{Name: "b", Value: "2"}) // size 34, evicts "a"

	assert.Equal(t, 1, dt.len())
	f, ok := dt.at(1)
	require.True(t, ok)
	assert.Equal(t, "b", f.Name)
}

func TestDynamicTableOversizedEntryLeavesTableEmpty(t *testing.T) {
	dt := newDynamicTable(16)
	dt.add(HeaderField{Name: "name", Value: "value-too-long-for-table"})
	assert.Equal(t, 0, dt.len())
}

func TestIntegerRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 9, 10, 127, 128, 1337, 1 << 20, 1 << 40} {
		buf := appendInteger(nil, 5, 0, v)
		got, n, err := readInteger(buf, 5)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestIntegerPrefixExample(t *testing.T) {
	// RFC 7541 §5.1's worked example: 1337 encoded with a 5-bit prefix.
	buf := appendInteger(nil, 5, 0, 1337)
	require.Len(t, buf, 3)
	assert.Equal(t, byte(31), buf[0])
	assert.Equal(t, byte(154), buf[1])
	assert.Equal(t, byte(10), buf[2])
}

func TestHuffmanRoundTrip(t *testing.T) {
	samples := []string{
		"",
		"a",
		"www.example.com",
		"no-cache",
		"custom-key",
		"custom-value",
		"The quick brown fox jumps over the lazy dog 0123456789",
	}
	for _, s := range samples {
		encoded := huffmanEncode(nil, s)
		decoded, err := huffmanDecode(encoded)
		require.NoError(t, err)
		assert.Equal(t, s, string(decoded))
	}
}

func TestHuffmanRejectsGarbage(t *testing.T) {
	_, err := huffmanDecode([]byte{0xff, 0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTripIndexedAndLiteral(t *testing.T) {
	enc := NewEncoder()
	var block []byte
	block = enc.EncodeField(block, Field{Name: ":method", Value: "GET"})
	block = enc.EncodeField(block, Field{Name: "custom-key", Value: "custom-value"})
	block = enc.EncodeField(block, Field{Name: "custom-key", Value: "custom-value"}) // now indexed

	var got []Field
	dec := NewDecoder(func(f Field) { got = append(got, f) })
	require.NoError(t, dec.DecodeFull(block))

	require.Len(t, got, 3)
	assert.Equal(t, Field{Name: ":method", Value: "GET"}, got[0])
	assert.Equal(t, Field{Name: "custom-key", Value: "custom-value"}, got[1])
	assert.Equal(t, Field{Name: "custom-key", Value: "custom-value"}, got[2])
}

func TestEncodeDecodeNeverIndexedSensitiveField(t *testing.T) {
	enc := NewEncoder()
	block := enc.EncodeField(nil, Field{Name: "authorization", Value: "secret-token", Sensitive: true})

	var got []Field
	dec := NewDecoder(func(f Field) { got = append(got, f) })
	require.NoError(t, dec.DecodeFull(block))

	require.Len(t, got, 1)
	assert.True(t, got[0].Sensitive)
	assert.Equal(t, "secret-token", got[0].Value)
	// Sensitive fields must never enter the dynamic table.
	assert.Equal(t, 0, enc.dynTable.len())
}

func TestDynamicTableSizeUpdateEmittedAndHonored(t *testing.T) {
	enc := NewEncoder()
	enc.SetMaxDynamicTableSize(128)
	block := enc.EncodeField(nil, Field{Name: "x-custom", Value: "y"})

	var got []Field
	dec := NewDecoder(func(f Field) { got = append(got, f) })
	require.NoError(t, dec.DecodeFull(block))
	require.Len(t, got, 1)
	assert.EqualValues(t, 128, dec.dynTable.maxSize)
}

func TestDecodeRejectsOversizedTableUpdate(t *testing.T) {
	dec := NewDecoder(func(Field) {})
	dec.SetMaxDynamicTableSize(64)

	block := appendInteger(nil, 5, 0x20, 4096)
	err := dec.DecodeFull(block)
	assert.ErrorIs(t, err, ErrSizeOutOfLimit)
}

func TestIndexedHeaderFieldWithIndexZeroIsInvalid(t *testing.T) {
	dec := NewDecoder(func(Field) {})
	block := []byte{0x80} // indexed, index 0
	err := dec.DecodeFull(block)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestDecodeOutOfRangeIndexErrors(t *testing.T) {
	dec := NewDecoder(func(Field) {})
	block := appendInteger(nil, 7, 0x80, 9999)
	err := dec.DecodeFull(block)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
