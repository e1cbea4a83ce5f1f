package main

import "github.com/docwright/docwright/cmd"

func main() {
	cmd.Execute()
}
