package main

import "github.com/fossasystems/fossasat-fcp/cmd/fossasat-fcp/cmd"

var version string // set by the compiler

func main() {
	cmd.Execute(version)
}
