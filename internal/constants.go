// Package internal provides core application constants and helpers shared by the CLI.
package internal

const (
	// ApplicationName is the name of the spawnguard application.
	ApplicationName = "spawnguard"
	// NotProvided is the value used when a build variable was not provided
	NotProvided = "[not provided]"
)
