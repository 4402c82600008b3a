package main

import "github.com/maastricht-university/meeting-clarity/cmd"

func main() {
	cmd.Execute()
}
