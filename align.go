// align.go - In-place alignment of PT_LOAD program headers
package main

import (
	"fmt"
	"io"
	"math"
	"os"
)

// DefaultPageSize is the 16KB page size required by newer Android devices
const DefaultPageSize = 16384

// Outcome classifies what happened to a single file
type Outcome int

const (
	OutcomeAligned   Outcome = iota // at least one PT_LOAD p_align was rewritten
	OutcomeUnchanged                // every PT_LOAD was already at the target page size
	OutcomeNotELF                   // no ELF magic, left untouched (benign skip)
	OutcomeError                    // I/O failure or malformed header
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAligned:
		return "aligned"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeNotELF:
		return "not an ELF file"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// AlignLoadSegments rewrites the p_align field of every PT_LOAD program
// header in the ELF file at path to pageSize, in place. No other byte of the
// file is touched and the file length never changes, so the operation is
// idempotent: a second run finds nothing to do and reports OutcomeUnchanged.
//
// A truncated program header table is not an error: iteration stops at the
// last fully readable entry and whatever was patched stays patched. With
// dryRun set the file is opened read-only and OutcomeAligned means "would
// have modified".
func AlignLoadSegments(path string, pageSize uint64, dryRun bool) (Outcome, error) {
	flags := os.O_RDWR
	if dryRun {
		flags = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return OutcomeError, err
	}
	defer f.Close()

	// The first 64 bytes cover the full header for both 32-bit and 64-bit
	header := make([]byte, elfHeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return OutcomeError, err
	}

	geo, err := parseGeometry(header[:n])
	if err == errNotELF {
		return OutcomeNotELF, err
	}
	if err != nil {
		return OutcomeError, err
	}

	if VerboseMode {
		fmt.Fprintf(os.Stderr, "%s: class=%s phoff=%d phentsize=%d phnum=%d\n",
			path, className(geo.is64), geo.phoff, geo.phentsize, geo.phnum)
	}

	// A declared entry size too small to contain p_align would make the
	// per-entry offsets below reach into neighboring entries. Refuse before
	// writing anything.
	if geo.phnum > 0 && uint64(geo.phentsize) < geo.alignOffset+uint64(geo.alignSize) {
		return OutcomeError, fmt.Errorf("malformed ELF: program header entry size %d cannot hold p_align", geo.phentsize)
	}
	if geo.phoff > math.MaxInt64-uint64(geo.phnum)*uint64(geo.phentsize) {
		return OutcomeError, fmt.Errorf("malformed ELF: program header table offset %d out of range", geo.phoff)
	}

	modified := false
	buf := make([]byte, elf64AlignSize)

	for i := 0; i < int(geo.phnum); i++ {
		entryOffset := int64(geo.phoff) + int64(i)*int64(geo.phentsize)

		// p_type is the first 4 bytes of every entry, both classes
		n, err := f.ReadAt(buf[:4], entryOffset)
		if n < 4 {
			if err == io.EOF {
				// Truncated table: stop quietly, keep what was patched
				if VerboseMode {
					fmt.Fprintf(os.Stderr, "%s: table truncated at entry %d of %d\n", path, i, geo.phnum)
				}
				break
			}
			return OutcomeError, err
		}
		ptype := geo.order.Uint32(buf[:4])
		if ptype != ptLoad {
			if VerboseMode {
				fmt.Fprintf(os.Stderr, "  phdr %d: type=0x%x (not PT_LOAD)\n", i, ptype)
			}
			continue
		}

		alignOffset := entryOffset + int64(geo.alignOffset)
		alignBuf := buf[:geo.alignSize]
		n, err = f.ReadAt(alignBuf, alignOffset)
		if n < geo.alignSize {
			if err == io.EOF {
				// Entry cut off mid-record: skip it, keep going
				continue
			}
			return OutcomeError, err
		}

		current := geo.alignValue(alignBuf)
		if VerboseMode {
			fmt.Fprintf(os.Stderr, "  phdr %d: type=PT_LOAD p_align=%d\n", i, current)
		}
		if current == pageSize {
			continue
		}

		modified = true
		if dryRun {
			continue
		}
		geo.putAlignValue(alignBuf, pageSize)
		if _, err := f.WriteAt(alignBuf, alignOffset); err != nil {
			return OutcomeError, err
		}
	}

	if modified {
		return OutcomeAligned, nil
	}
	return OutcomeUnchanged, nil
}

func className(is64 bool) string {
	if is64 {
		return "ELF64"
	}
	return "ELF32"
}
