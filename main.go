package main

import "github.com/jake-scott/smartthings-spotify/cmd"

func main() {
	cmd.Execute()
}
