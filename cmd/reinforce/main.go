package main

import (
	"github.com/rtsops/reinforce/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
