package main

import "github.com/graph-metrics/cmd/graph-metrics/cmd"

func main() {
	cmd.Execute()
}
