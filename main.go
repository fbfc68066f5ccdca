// Package main is the entry point for the royaleops CLI, which runs battle-royale
// training sessions and 4x4 series: rosters, scoring, replay import, drafts and
// leaderboards.
package main

import "github.com/pable/royaleops/cmd"

func main() {
	cmd.Execute()
}
