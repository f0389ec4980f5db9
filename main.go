package main

import "github.com/naka-gawa/release-cadence/cmd"

func main() {
	cmd.Execute()
}
