package main

import "github.com/RyanBlaney/phase-skew-monitor/cmd"

func main() {
	cmd.Execute()
}
