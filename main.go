package main

import "github.com/focuscope/focuscope/cmd"

func main() {
	cmd.Execute()
}
