//go:build !windows

package main

import (
	"fmt"
	"os"
)

func runDaemon(uintptr) int {
	fmt.Fprintln(os.Stderr, "the ledge daemon drives the Windows shell and only runs on Windows")
	return 1
}
