package main

import "azdo-cli/cmd"

func main() {
	cmd.Execute()
}
