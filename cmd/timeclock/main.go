package main

import "github.com/rpggio/timeclock/internal/cli"

func main() {
	cli.Execute()
}
