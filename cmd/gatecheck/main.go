package main

import "opsgate/cmd/gatecheck/command"

func main() {
	command.Execute()
}
