// Package main is the entry point for the repolens CLI.
package main

import "github.com/blackwell-systems/repolens/internal/app"

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/repolens
var version = "dev"

func main() {
	app.SetVersion(version)
	app.Execute()
}
