//go:build !windows
// +build !windows

package main

// setupConsole is a no-op where terminals already speak UTF-8
func setupConsole() {}
