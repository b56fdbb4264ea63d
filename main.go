package main

import "repstress/cmd"

func main() {
	cmd.Execute()
}
