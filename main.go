package main

import "speedlog/internal/cli"

func main() {
	cli.Execute()
}
