package main

import "github.com/viktsys/woolauction/cmd"

func main() {
	cmd.Execute()
}
