package main

import "github.com/aseyam/attendsystem/cmd"

func main() {
	cmd.Execute()
}
