package main

import "cinema-tui/cmd"

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cmd.Execute(cmd.BuildInfo{Version: version, Commit: commit})
}
