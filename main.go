// main.go - CLI for patching ELF shared objects to 16KB page alignment
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"
)

// A small tool that rewrites p_align in PT_LOAD program headers so that
// prebuilt .so files satisfy the 16KB page size requirement of Android 15+.
// It is meant to run as a post-build step, typically over a directory of
// freshly built shared objects.

const versionString = "elfalign 1.1.0"

var (
	// VerboseMode enables per-entry diagnostics on stderr
	VerboseMode bool
	// QuietMode suppresses the per-file status lines on stdout
	QuietMode bool
)

func usage() {
	fmt.Printf(`elfalign - align ELF LOAD segments to a 16KB page size (%s)

USAGE:
    elfalign [flags] <file.so | directory> [more files...]

A directory argument processes every *.so file directly inside it.
Files that are already aligned produce no output. Files that are not ELF
binaries are skipped with a SKIP line and count as not processed.

FLAGS:
    -p, --page-size <bytes>   Target page size (default: %d, power of two)
    -n, --dry-run             Report what would change without writing
    -v, --verbose             Verbose mode (per-entry details on stderr)
    -q, --quiet               Quiet mode (suppress status lines)
    -V, --version             Print version information and exit

ENVIRONMENT:
    ELFALIGN_PAGESIZE         Default for --page-size
    ELFALIGN_VERBOSE          Set to 1 to enable verbose mode
    ELFALIGN_QUIET            Set to 1 to enable quiet mode

EXAMPLES:
    elfalign libfoo.so
    elfalign app/build/jniLibs/arm64-v8a
    elfalign -n -v libfoo.so libbar.so

`, versionString, DefaultPageSize)
}

func main() {
	defaultPageSize := env.Int("ELFALIGN_PAGESIZE", DefaultPageSize)

	var pageSizeFlag = flag.Int("p", defaultPageSize, "target page size in bytes")
	var pageSizeLongFlag = flag.Int("page-size", defaultPageSize, "target page size in bytes")
	var dryRun = flag.Bool("n", false, "report what would change without writing")
	var dryRunLong = flag.Bool("dry-run", false, "report what would change without writing")
	var verbose = flag.Bool("v", env.Bool("ELFALIGN_VERBOSE"), "verbose mode (per-entry details)")
	var verboseLong = flag.Bool("verbose", env.Bool("ELFALIGN_VERBOSE"), "verbose mode (per-entry details)")
	var quiet = flag.Bool("q", env.Bool("ELFALIGN_QUIET"), "quiet mode (suppress status lines)")
	var quietLong = flag.Bool("quiet", env.Bool("ELFALIGN_QUIET"), "quiet mode (suppress status lines)")
	var versionShort = flag.Bool("V", false, "print version information and exit")
	var version = flag.Bool("version", false, "print version information and exit")
	flag.Usage = usage
	flag.Parse()

	if *version || *versionShort {
		fmt.Println(versionString)
		os.Exit(0)
	}

	VerboseMode = *verbose || *verboseLong
	QuietMode = *quiet || *quietLong

	// Use whichever page size flag was specified (prefer short form if both given)
	pageSize := *pageSizeLongFlag
	if *pageSizeFlag != defaultPageSize {
		pageSize = *pageSizeFlag
	}
	if pageSize <= 0 || pageSize&(pageSize-1) != 0 {
		fmt.Fprintf(os.Stderr, "Error: page size %d is not a power of two\n", pageSize)
		os.Exit(1)
	}

	// Best-effort console setup so status output never trips over a legacy
	// codepage (relevant on Windows only)
	setupConsole()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	targets, err := expandTargets(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ok := true
	for _, path := range targets {
		if !alignFile(path, uint64(pageSize), *dryRun || *dryRunLong) {
			ok = false
		}
	}
	if !ok {
		os.Exit(1)
	}
}

// alignFile patches one file and prints its status line. It returns false if
// the file could not be processed; a failure never stops the rest of the
// batch, the caller just remembers it for the exit code.
func alignFile(path string, pageSize uint64, dryRun bool) bool {
	outcome, err := AlignLoadSegments(path, pageSize, dryRun)
	base := filepath.Base(path)

	switch outcome {
	case OutcomeAligned:
		if !QuietMode {
			if dryRun {
				fmt.Printf("[16KB] WOULD ALIGN %s\n", base)
			} else {
				fmt.Printf("[16KB] ALIGNED %s\n", base)
			}
		}
		return true
	case OutcomeUnchanged:
		// Already aligned: stay silent to keep batch output compact
		return true
	case OutcomeNotELF:
		if !QuietMode {
			fmt.Printf("[16KB] SKIP  %s (not an ELF file)\n", base)
		}
		return false
	default:
		fmt.Printf("[16KB] ERROR  %s : %v\n", base, err)
		return false
	}
}
