package main

import "duewatch/cmd"

func main() {
	cmd.Run()
}
