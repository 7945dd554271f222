package main

import (
	"github.com/abel123/zeus/pkg/cmd"
)

func main() {
	cmd.Execute()
}
