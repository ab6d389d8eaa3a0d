package main

import "thb-crypto-watch/internal/cli"

func main() {
	cli.Execute()
}
