package main

import (
	"github.com/fleetmanage/fleetmanage/internal/cli"
)

func main() {
	cli.Execute()
}
