//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: RFC 7541 §6 (binary format), with the encoder/decoder API
// shape following golang.org/x/net/http2/hpack's Encoder/Decoder split.
//

// Package hpack implements RFC 7541 HPACK header compression: a static
// table, a per-connection dynamic table, canonical Huffman coding, and
// the five field-representation encodings a header block is built from.
package hpack

// Field is a decoded header field together with whether it should be
// treated as sensitive (never re-added to a dynamic table, never
// Huffman-reused across connections), mirroring RFC 7541 §6.2.3's
// "Literal Header Field Never Indexed".
type Field struct {
	Name      string
	Value     string
	Sensitive bool
}

// Decoder decodes a sequence of HPACK-encoded header blocks against one
// dynamic table, per spec.md §10. A Decoder is stateful across calls:
// dynamic table insertions from one block are visible to the next,
// exactly as RFC 7541 requires for a single HTTP/2 connection's
// decompression context.
type Decoder struct {
	dynTable *dynamicTable
	maxSize  uint32 // bound accepted via a dynamic size update
	emit     func(Field)
}

// NewDecoder returns a Decoder whose dynamic table starts at
// [DefaultDynamicTableSize]. emit is called once per decoded field, in
// block order.
func NewDecoder(emit func(Field)) *Decoder {
	return &Decoder{
		dynTable: newDynamicTable(DefaultDynamicTableSize),
		maxSize:  DefaultDynamicTableSize,
		emit:     emit,
	}
}

// DynamicTableSize returns the current total size (RFC 7541 §4.1
// accounting) of the decoder's dynamic table.
func (d *Decoder) DynamicTableSize() uint32 {
	return d.dynTable.size
}

// SetMaxDynamicTableSize bounds how large a dynamic table size update the
// peer may request, mirroring the local SETTINGS_HEADER_TABLE_SIZE value
// in an HTTP/2 deployment (spec.md §10).
func (d *Decoder) SetMaxDynamicTableSize(size uint32) {
	d.maxSize = size
	if d.dynTable.maxSize > size {
		d.dynTable.setMaxSize(size)
	}
}

// DecodeFull decodes an entire header block, emitting every field via
// the Decoder's emit callback.
func (d *Decoder) DecodeFull(block []byte) error {
	for len(block) > 0 {
		n, err := d.decodeOne(block)
		if err != nil {
			return err
		}
		block = block[n:]
	}
	return nil
}

// decodeOne decodes a single field representation starting at buf[0],
// per RFC 7541 §6, returning the number of bytes consumed.
func (d *Decoder) decodeOne(buf []byte) (int, error) {
	first := buf[0]
	switch {
	case first&0x80 != 0:
		// Indexed Header Field (§6.1): 1xxxxxxx
		idx, n, err := readInteger(buf, 7)
		if err != nil {
			return 0, err
		}
		if idx == 0 {
			return 0, ErrInvalidIndex
		}
		f, err := d.lookup(idx)
		if err != nil {
			return 0, err
		}
		d.emit(Field{Name: f.Name, Value: f.Value})
		return n, nil

	case first&0x40 != 0:
		// Literal Header Field with Incremental Indexing (§6.2.1): 01xxxxxx
		return d.decodeLiteral(buf, 6, true, false)

	case first&0x20 != 0:
		// Dynamic Table Size Update (§6.3): 001xxxxx
		size, n, err := readInteger(buf, 5)
		if err != nil {
			return 0, err
		}
		if size > uint64(d.maxSize) {
			return 0, ErrSizeOutOfLimit
		}
		d.dynTable.setMaxSize(uint32(size))
		return n, nil

	case first&0x10 != 0:
		// Literal Header Field Never Indexed (§6.2.3): 0001xxxx
		return d.decodeLiteral(buf, 4, false, true)

	default:
		// Literal Header Field without Indexing (§6.2.2): 0000xxxx
		return d.decodeLiteral(buf, 4, false, false)
	}
}

// decodeLiteral decodes a literal header field representation (one of
// §6.2.1, §6.2.2, §6.2.3), which share the same layout modulo prefix
// width and whether the result is added to the dynamic table.
func (d *Decoder) decodeLiteral(buf []byte, prefixBits int, indexed, sensitive bool) (int, error) {
	nameIdx, n, err := readInteger(buf, prefixBits)
	if err != nil {
		return 0, err
	}
	consumed := n

	var name string
	if nameIdx == 0 {
		s, sn, err := decodeString(buf[consumed:])
		if err != nil {
			return 0, err
		}
		name = s
		consumed += sn
	} else {
		f, err := d.lookup(nameIdx)
		if err != nil {
			return 0, err
		}
		name = f.Name
	}

	value, vn, err := decodeString(buf[consumed:])
	if err != nil {
		return 0, err
	}
	consumed += vn

	if indexed {
		d.dynTable.add(HeaderField{Name: name, Value: value})
	}
	d.emit(Field{Name: name, Value: value, Sensitive: sensitive})
	return consumed, nil
}

// lookup resolves a 1-based combined index (static table first, then
// dynamic table) per RFC 7541 §2.3.3.
func (d *Decoder) lookup(idx uint64) (HeaderField, error) {
	if idx >= 1 && idx <= uint64(staticTableSize) {
		return staticTable[idx-1], nil
	}
	f, ok := d.dynTable.at(idx - uint64(staticTableSize))
	if !ok {
		return HeaderField{}, ErrIndexOutOfRange
	}
	return f, nil
}

// decodeString decodes a string literal: a length-prefixed, optionally
// Huffman-encoded octet sequence per RFC 7541 §5.2.
func decodeString(buf []byte) (string, int, error) {
	if len(buf) == 0 {
		return "", 0, ErrNeedMoreData
	}
	huff := buf[0]&0x80 != 0
	length, n, err := readInteger(buf, 7)
	if err != nil {
		return "", 0, err
	}
	total := n + int(length)
	if total > len(buf) {
		return "", 0, ErrNeedMoreData
	}
	raw := buf[n:total]
	if !huff {
		return string(raw), total, nil
	}
	decoded, err := huffmanDecode(raw)
	if err != nil {
		return "", 0, err
	}
	return string(decoded), total, nil
}

// Encoder encodes header fields into an HPACK block against one dynamic
// table, the encode-side counterpart of [Decoder].
type Encoder struct {
	dynTable    *dynamicTable
	huffman     bool
	sizeUpdates []uint32
}

// NewEncoder returns an Encoder whose dynamic table starts at
// [DefaultDynamicTableSize], Huffman-encoding string literals by default.
func NewEncoder() *Encoder {
	return &Encoder{
		dynTable: newDynamicTable(DefaultDynamicTableSize),
		huffman:  true,
	}
}

// DynamicTableSize returns the current total size (RFC 7541 §4.1
// accounting) of the encoder's dynamic table.
func (e *Encoder) DynamicTableSize() uint32 {
	return e.dynTable.size
}

// SetHuffman toggles whether string literals are Huffman-encoded.
// Disabling it is mainly useful for producing byte-exact test vectors.
func (e *Encoder) SetHuffman(enabled bool) {
	e.huffman = enabled
}

// SetMaxDynamicTableSize queues a dynamic table size update to be
// emitted at the start of the next encoded block, per RFC 7541 §4.2
// ("this mechanism can be used ... to communicate a change").
func (e *Encoder) SetMaxDynamicTableSize(size uint32) {
	e.dynTable.setMaxSize(size)
	e.sizeUpdates = append(e.sizeUpdates, size)
}

// EncodeField appends the representation of f to dst, preferring (in
// order) a full indexed reference, a name-only indexed reference with a
// literal value, then a fully literal field — RFC 7541 §6's encoder
// strategy space, simplified to "never indexed" for sensitive fields.
func (e *Encoder) EncodeField(dst []byte, f Field) []byte {
	for _, size := range e.sizeUpdates {
		dst = appendInteger(dst, 5, 0x20, uint64(size))
	}
	e.sizeUpdates = nil

	key := HeaderField{Name: f.Name, Value: f.Value}
	if idx, ok := staticNameValueIndex[key]; ok && !f.Sensitive {
		return appendInteger(dst, 7, 0x80, idx)
	}
	if idx, ok := e.dynamicNameValueIndex(key); ok && !f.Sensitive {
		return appendInteger(dst, 7, 0x80, idx)
	}

	nameIdx, hasName := staticNameIndex[f.Name]
	if !hasName {
		if di, ok := e.dynamicNameIndex(f.Name); ok {
			nameIdx, hasName = di, true
		}
	}

	var prefixBits int
	var firstOctet byte
	indexed := !f.Sensitive
	if f.Sensitive {
		prefixBits, firstOctet = 4, 0x10
	} else {
		prefixBits, firstOctet = 6, 0x40
	}

	if hasName {
		dst = appendInteger(dst, prefixBits, firstOctet, nameIdx)
	} else {
		dst = appendInteger(dst, prefixBits, firstOctet, 0)
		dst = e.appendString(dst, f.Name)
	}
	dst = e.appendString(dst, f.Value)

	if indexed {
		e.dynTable.add(HeaderField{Name: f.Name, Value: f.Value})
	}
	return dst
}

// dynamicNameValueIndex searches the dynamic table for an exact
// name/value match, returning its combined 1-based index.
func (e *Encoder) dynamicNameValueIndex(key HeaderField) (uint64, bool) {
	for i, f := range e.dynTable.entries {
		if f == key {
			return uint64(staticTableSize + i + 1), true
		}
	}
	return 0, false
}

// dynamicNameIndex searches the dynamic table for the newest entry with
// a matching name.
func (e *Encoder) dynamicNameIndex(name string) (uint64, bool) {
	for i, f := range e.dynTable.entries {
		if f.Name == name {
			return uint64(staticTableSize + i + 1), true
		}
	}
	return 0, false
}

// appendString appends a length-prefixed string literal, Huffman-encoded
// when doing so makes it strictly shorter and e.huffman is enabled (RFC 7541
// §5.2 permits choosing plain text whenever it is shorter or equal).
func (e *Encoder) appendString(dst []byte, s string) []byte {
	if e.huffman {
		if n := huffmanEncodedLen(s); n < len(s) {
			dst = appendInteger(dst, 7, 0x80, uint64(n))
			return huffmanEncode(dst, s)
		}
	}
	dst = appendInteger(dst, 7, 0x00, uint64(len(s)))
	return append(dst, s...)
}
