package main

import (
	"os"

	"github.com/provscan/provscan/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
