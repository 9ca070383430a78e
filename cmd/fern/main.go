package main

import (
	"github.com/Ramsey-B/fern/cmd/fern/commands"
)

func main() {
	commands.Execute()
}
