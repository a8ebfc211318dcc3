// elf.go - ELF identification and program header table geometry
package main

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ELF structure constants. Only the fields needed to locate and rewrite
// p_align are described here; everything else in the file is opaque bytes.
const (
	elfIdentSize  = 16 // e_ident region
	elfHeaderSize = 64 // covers the full header for both classes

	// e_ident bytes
	elfClass32 = 1
	elfClass64 = 2
	elfDataLSB = 1 // little-endian
	elfDataMSB = 2 // big-endian

	// 64-bit ELF header field offsets
	elf64PhoffOffset     = 32 // e_phoff (uint64)
	elf64PhentsizeOffset = 54 // e_phentsize (uint16)
	elf64PhnumOffset     = 56 // e_phnum (uint16)

	// 32-bit ELF header field offsets
	elf32PhoffOffset     = 28 // e_phoff (uint32)
	elf32PhentsizeOffset = 42 // e_phentsize (uint16)
	elf32PhnumOffset     = 44 // e_phnum (uint16)

	// p_align location within a program header entry
	elf64AlignOffset = 48
	elf64AlignSize   = 8
	elf32AlignOffset = 28
	elf32AlignSize   = 4

	// Program header types
	ptLoad = 1 // PT_LOAD: loadable segment
)

// elfMagic is the fixed signature at the start of every ELF file
var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

var (
	errNotELF          = errors.New("not an ELF file")
	errTruncatedHeader = errors.New("malformed ELF: header truncated")
)

// elfGeometry describes where the program header table lives and how to
// reach the p_align field inside each of its entries. It is derived from
// the first 64 bytes of the file and is all the structure this tool needs.
type elfGeometry struct {
	is64      bool
	order     binary.ByteOrder
	phoff     uint64 // file offset of the program header table
	phentsize uint16 // size of one table entry
	phnum     uint16 // number of table entries

	alignOffset uint64 // p_align offset within an entry
	alignSize   int    // p_align width: 8 (ELF64) or 4 (ELF32)
}

// parseGeometry decodes the fixed ELF header. A missing magic number (or a
// header shorter than e_ident) is reported as errNotELF so callers can treat
// the file as a benign skip; anything recognizably ELF but undecodable is a
// malformed-header error.
func parseGeometry(header []byte) (*elfGeometry, error) {
	if len(header) < elfIdentSize ||
		header[0] != elfMagic[0] || header[1] != elfMagic[1] ||
		header[2] != elfMagic[2] || header[3] != elfMagic[3] {
		return nil, errNotELF
	}

	geo := &elfGeometry{}

	// EI_CLASS: 1 = 32-bit, 2 = 64-bit
	switch header[4] {
	case elfClass32:
		geo.is64 = false
	case elfClass64:
		geo.is64 = true
	default:
		return nil, fmt.Errorf("malformed ELF: unknown class %d", header[4])
	}

	// EI_DATA: 1 = little-endian, 2 = big-endian. The declared byte order
	// applies to every multi-byte field read from here on, program header
	// table included.
	switch header[5] {
	case elfDataLSB:
		geo.order = binary.LittleEndian
	case elfDataMSB:
		geo.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("malformed ELF: unknown data encoding %d", header[5])
	}

	if geo.is64 {
		if len(header) < elf64PhnumOffset+2 {
			return nil, errTruncatedHeader
		}
		geo.phoff = geo.order.Uint64(header[elf64PhoffOffset:])
		geo.phentsize = geo.order.Uint16(header[elf64PhentsizeOffset:])
		geo.phnum = geo.order.Uint16(header[elf64PhnumOffset:])
		geo.alignOffset = elf64AlignOffset
		geo.alignSize = elf64AlignSize
	} else {
		if len(header) < elf32PhnumOffset+2 {
			return nil, errTruncatedHeader
		}
		geo.phoff = uint64(geo.order.Uint32(header[elf32PhoffOffset:]))
		geo.phentsize = geo.order.Uint16(header[elf32PhentsizeOffset:])
		geo.phnum = geo.order.Uint16(header[elf32PhnumOffset:])
		geo.alignOffset = elf32AlignOffset
		geo.alignSize = elf32AlignSize
	}

	return geo, nil
}

// alignValue decodes a p_align field in the file's byte order and class width
func (g *elfGeometry) alignValue(b []byte) uint64 {
	if g.alignSize == elf64AlignSize {
		return g.order.Uint64(b)
	}
	return uint64(g.order.Uint32(b))
}

// putAlignValue encodes a p_align value in the file's byte order and class width
func (g *elfGeometry) putAlignValue(b []byte, v uint64) {
	if g.alignSize == elf64AlignSize {
		g.order.PutUint64(b, v)
	} else {
		g.order.PutUint32(b, uint32(v))
	}
}
