package main

import "avular-upgrade/internal/cli"

func main() {
	cli.Execute()
}
