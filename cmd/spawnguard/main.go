package main

import (
	"github.com/anchore/clio"
	"github.com/anchore/spawnguard/cmd/spawnguard/cli"
	"github.com/anchore/spawnguard/internal"
)

// all variables here are provided as build-time arguments, with clear default values
var (
	version        = internal.NotProvided
	gitCommit      = internal.NotProvided
	gitDescription = internal.NotProvided
	buildDate      = internal.NotProvided
)

func main() {
	app := cli.Application(
		clio.Identification{
			Name:           internal.ApplicationName,
			Version:        version,
			GitCommit:      gitCommit,
			GitDescription: gitDescription,
			BuildDate:      buildDate,
		},
	)

	app.Run()
}
