package main

import (
	"github.com/idossha/ti-opt-core/cmd"
)

func main() {
	cmd.Execute()
}
