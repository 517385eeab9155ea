package main

import "github.com/oshokin/vent-monitor/cmd/vent-monitor/cmd"

func main() {
	cmd.Execute()
}
