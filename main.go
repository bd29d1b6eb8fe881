// Package main is the entry point for the codstats CLI, which loads Call of
// Duty match history and reports performance analytics.
package main

import "github.com/pable/go-cod-stats/cmd"

func main() {
	cmd.Execute()
}
