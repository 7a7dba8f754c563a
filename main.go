package main

import "github.com/hugsylabs/hugsy/cmd"

func main() {
	cmd.Execute()
}
