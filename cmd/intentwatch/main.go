package main

import "github.com/ppiankov/intentwatch/internal/cli"

func main() {
	cli.Execute()
}
