package main

import "github.com/upthermo/orcalc/cmd"

func main() {
	cmd.Execute()
}
