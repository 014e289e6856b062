package main

import "github.com/clodobox/EventGear/cmd"

func main() {
	cmd.Execute()
}
