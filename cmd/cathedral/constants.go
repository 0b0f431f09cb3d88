package main

// Default limits for CLI commands.
const (
	DefaultSearchLimit = 10
	DefaultListLimit   = 50
)

// Valid export formats.
var validFormats = []string{"json", "csv"}
