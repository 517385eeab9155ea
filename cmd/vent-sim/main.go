package main

import "github.com/oshokin/vent-monitor/cmd/vent-sim/cmd"

func main() {
	cmd.Execute()
}
