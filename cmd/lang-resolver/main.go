// Package main provides the lang-resolver CLI.
package main

import "lang-resolver/internal/cli"

func main() {
	cli.Execute()
}
