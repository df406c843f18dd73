package main

import "github.com/maxvaer/dirbust/cmd"

func main() {
	cmd.Execute()
}
