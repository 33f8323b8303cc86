package main

import "github.com/noralyzer/noralyzer/cmd"

func main() {
	cmd.Execute()
}
