package main

import "users-api/internal/cli"

func main() {
	cli.Execute()
}
