// Package main is the entry point for the fbmetrics CLI tool, which loads
// StatsBomb World Cup 2022 event logs and computes final-third passing and
// per-90 productivity metrics.
package main

import "github.com/pable/go-football-metrics/cmd"

func main() {
	cmd.Execute()
}
