package main

import "github.com/oshokin/vent-monitor/cmd/vent-alarms/cmd"

func main() {
	cmd.Execute()
}
