package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// TestExpandTargetsDirectory: a directory argument expands to the .so files
// directly inside it, nothing else
func TestExpandTargetsDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"liba.so", "libb.so"} {
		if err := os.WriteFile(filepath.Join(dir, name), buildELF64(binary.LittleEndian, nil), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write notes.txt: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("Failed to make subdir: %v", err)
	}

	targets, err := expandTargets([]string{dir})
	if err != nil {
		t.Fatalf("expandTargets failed: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("Expected 2 targets, got %d: %v", len(targets), targets)
	}
	if filepath.Base(targets[0]) != "liba.so" || filepath.Base(targets[1]) != "libb.so" {
		t.Errorf("Unexpected targets: %v", targets)
	}
}

// TestExpandTargetsPassthrough: plain files pass through as-is, including
// paths that do not exist (they fail later, per file)
func TestExpandTargetsPassthrough(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "libreal.so")
	if err := os.WriteFile(real, buildELF64(binary.LittleEndian, nil), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	missing := filepath.Join(dir, "gone.so")

	targets, err := expandTargets([]string{real, missing})
	if err != nil {
		t.Fatalf("expandTargets failed: %v", err)
	}
	if len(targets) != 2 || targets[0] != real || targets[1] != missing {
		t.Errorf("Expected passthrough [%s %s], got %v", real, missing, targets)
	}
}

// TestAlignDirectory runs the full directory flow over a mixed jniLibs-style
// layout: both libs get patched, the stray text file is never considered
func TestAlignDirectory(t *testing.T) {
	dir := t.TempDir()
	libs := []string{"libfoo.so", "libbar.so"}
	for _, name := range libs {
		data := buildELF64(binary.LittleEndian, []testSegment{{ptLoad, 4096}})
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a lib"), 0644); err != nil {
		t.Fatalf("Failed to write readme: %v", err)
	}

	targets, err := expandTargets([]string{dir})
	if err != nil {
		t.Fatalf("expandTargets failed: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("Expected 2 targets, got %v", targets)
	}

	for _, target := range targets {
		outcome, err := AlignLoadSegments(target, DefaultPageSize, false)
		if err != nil {
			t.Fatalf("AlignLoadSegments(%s) failed: %v", target, err)
		}
		if outcome != OutcomeAligned {
			t.Errorf("%s: expected OutcomeAligned, got %v", filepath.Base(target), outcome)
		}
	}
}

// TestAlignFileStatus checks the per-file success/failure signal main uses
// for the exit code
func TestAlignFileStatus(t *testing.T) {
	oldQuiet := QuietMode
	QuietMode = true
	defer func() { QuietMode = oldQuiet }()

	dir := t.TempDir()

	good := filepath.Join(dir, "libgood.so")
	if err := os.WriteFile(good, buildELF64(binary.LittleEndian, []testSegment{{ptLoad, 4096}}), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if !alignFile(good, DefaultPageSize, false) {
		t.Error("Expected success for a patchable ELF")
	}
	if !alignFile(good, DefaultPageSize, false) {
		t.Error("Expected success for an already-aligned ELF")
	}

	text := filepath.Join(dir, "readme.txt")
	if err := os.WriteFile(text, []byte("hello"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if alignFile(text, DefaultPageSize, false) {
		t.Error("Expected non-success for a non-ELF file")
	}

	if alignFile(filepath.Join(dir, "missing.so"), DefaultPageSize, false) {
		t.Error("Expected non-success for a missing file")
	}
}
