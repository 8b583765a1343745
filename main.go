package main

import "github.com/brogergvhs/pagegrab/cmd"

func main() {
	cmd.Execute()
}
