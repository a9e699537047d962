package main

import "github.com/YoungLee-coder/coshub/cmd/coshub/cmd"

func main() {
	cmd.Execute()
}
