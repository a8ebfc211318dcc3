//go:build windows
// +build windows

package main

import "golang.org/x/sys/windows"

// setupConsole switches the console output codepage to UTF-8 so status lines
// survive legacy codepages like cp850 and cp1252. Best effort: a console-less
// process (Gradle daemon, CI) makes the call fail and that is fine.
func setupConsole() {
	_ = windows.SetConsoleOutputCP(65001)
}
