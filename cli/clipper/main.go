package main

import (
	"os"

	clippercmder "github.com/clipperhq/clipper/cmd/clipper"
)

func main() {
	cmd := clippercmder.NewClipperCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
