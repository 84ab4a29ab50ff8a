package main

import (
	_ "embed"

	"github.com/YanGranat/ukhvat-notes-sub000/cmd"
)

//go:embed config/config.yaml
var c string

func main() {
	cmd.Execute(c)
}
