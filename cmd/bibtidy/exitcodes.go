package main

// Exit codes. Pre-commit hooks treat anything non-zero as a failure;
// build scripts can distinguish "file rewritten" from "needs a human".
const (
	ExitUnchanged = 0 // Bibliography already clean
	ExitChanged   = 1 // Bibliography rewritten
	ExitBroken    = 2 // Error diagnostics: fix the sources
	ExitError     = 3 // Invalid arguments or runtime failure
)
