package main

import "github.com/aalvaropc/roulette/internal/cli"

func main() {
	cli.Execute()
}
