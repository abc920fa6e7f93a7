package main

import "github.com/brogergvhs/mangafetch/cmd"

func main() {
	cmd.Execute()
}
