package main

import "rivaluta/cmd/rivaluta/commands"

func main() {
	commands.Execute()
}
