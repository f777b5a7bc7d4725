package main

import (
	"github.com/pladd04/TRTools/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
