package main

import "github.com/tessro/showcase/internal/cli"

func main() {
	cli.Execute()
}
