package main

import "github.com/missionconf/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
