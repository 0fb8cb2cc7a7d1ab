package main

import "github.com/growerlab/kitbridge/cmd/kitbridge"

func main() {
	kitbridge.Main()
}
