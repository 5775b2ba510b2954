package main

import "github.com/tathya/tathya-cli/internal/cmd"

func main() {
	cmd.Execute()
}
