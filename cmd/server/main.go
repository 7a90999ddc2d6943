package main

import "github.com/warebase/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
