package main

import "github.com/kiesman99/tilemark/cmd"

func main() {
	cmd.Execute()
}
