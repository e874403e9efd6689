package main

import "github.com/khanhnv2901/seca-sri/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
