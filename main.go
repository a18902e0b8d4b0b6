package main

import "earthborne-tracker/cli"

func main() {
	cli.Execute()
}
