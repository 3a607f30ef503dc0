package main

import "github.com/Project-Sylos/Folio/internal/cli"

func main() {
	cli.Execute()
}
