package main

import "github.com/devicelab-dev/reel-publisher/pkg/cli"

func main() {
	cli.Execute()
}
