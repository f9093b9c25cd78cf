package main

import "github.com/liftedinit/custody/cmd/custody"

func main() {
	custody.Execute()
}
