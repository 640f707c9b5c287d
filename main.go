package main

import "github.com/brogergvhs/mangacap/cmd"

func main() {
	cmd.Execute()
}
