package main

import "insight/cmd"

func main() {
	cmd.Execute()
}
