package main

import "github.com/pfrederiksen/fis-results/internal/cli"

func main() {
	cli.Execute()
}
