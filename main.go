package main

import "github.com/user/reconai/cmd"

func main() {
	cmd.Execute()
}
