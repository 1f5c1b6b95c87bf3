package main

import "github.com/Tiliavir/timetrack/cmd"

func main() {
	cmd.Execute()
}
