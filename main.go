package main

import "github.com/contextiq/contextiq-cli/cmd"

func main() {
	cmd.Execute()
}
