package main

import "github.com/nhle/mailagent/internal/cli"

func main() {
	cli.Execute()
}
