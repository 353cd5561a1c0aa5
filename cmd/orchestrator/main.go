package main

import (
	"os"

	"github.com/verilogica/orchestrator/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
