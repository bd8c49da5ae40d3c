package main

import "github.com/hal75-user/PC-System-Tool/cmd"

func main() {
	cmd.Execute()
}
