package main

import "github.com/AvanishMeedimale/finite-element/cmd"

func main() {
	cmd.Execute()
}
