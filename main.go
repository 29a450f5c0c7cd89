package main

import "github.com/pageaudit/pageaudit-cli/cmd"

// execCmd is indirected so main can be exercised in tests.
var execCmd = cmd.Execute

func main() {
	execCmd()
}
