// dir.go - Directory arguments expand to the shared objects they contain
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// expandTargets replaces each directory argument with the *.so files directly
// inside it (non-recursive, matching how jniLibs ABI directories are laid
// out). Plain file arguments pass through untouched, existing or not: a
// missing file surfaces later as a per-file ERROR line instead of aborting
// the batch.
func expandTargets(args []string) ([]string, error) {
	var targets []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			targets = append(targets, arg)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(arg, "*.so"))
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %v", arg, err)
		}
		if len(matches) == 0 && VerboseMode {
			fmt.Fprintf(os.Stderr, "no .so files found in %s\n", arg)
		}
		targets = append(targets, matches...)
	}
	return targets, nil
}
