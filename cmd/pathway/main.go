// Package main provides the pathway CLI entry point.
package main

import "github.com/mesh-intelligence/pathway/internal/cli"

func main() {
	cli.Execute()
}
