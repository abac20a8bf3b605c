package main

import "github.com/coloradoleasecheck/leasecheck/cmd"

func main() {
	cmd.Execute()
}
