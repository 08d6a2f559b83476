//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package hpack

import "errors"

// Decode/encode error sentinels, per spec.md §10's HPACK error kinds.
var (
	ErrInvalidIndex     = errors.New("hpack: invalid index")
	ErrIndexOutOfRange  = errors.New("hpack: index out of range")
	ErrIntegerOverflow  = errors.New("hpack: integer overflow")
	ErrNeedMoreData     = errors.New("hpack: need more data")
	ErrInvalidHuffman   = errors.New("hpack: invalid Huffman-encoded data")
	ErrSizeOutOfLimit   = errors.New("hpack: dynamic table size update exceeds limit")
	ErrFieldNotInTable  = errors.New("hpack: field not present in any table")
	ErrUnknownFieldType = errors.New("hpack: unknown field representation type")
)
