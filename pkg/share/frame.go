// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-smc.
//
// go-smc is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package share

import "encoding/binary"

// frameMagic prefixes every authenticated encoding.
var frameMagic = []byte("SMC1")

// frame builds the length-prefixed, big-endian encoding MAC tags are
// computed over. Every variable-length field carries a 32-bit length so two
// distinct shares never share an encoding.
type frame struct {
	buf []byte
}

func newFrame(alg Algorithm, p *point) *frame {
	f := &frame{buf: make([]byte, 0, 32+len(p.y))}
	f.buf = append(f.buf, frameMagic...)
	f.putString(string(alg))
	f.putInt(p.id)
	f.putInt(p.originalLength)
	f.putBytes(p.y)
	return f
}

func (f *frame) putInt(v int) {
	f.buf = binary.BigEndian.AppendUint64(f.buf, uint64(v))
}

func (f *frame) putBytes(b []byte) {
	f.buf = binary.BigEndian.AppendUint32(f.buf, uint32(len(b)))
	f.buf = append(f.buf, b...)
}

func (f *frame) putString(s string) {
	f.putBytes([]byte(s))
}

func (f *frame) bytes() []byte {
	return f.buf
}
