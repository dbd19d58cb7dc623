package main

import "github.com/nfrund/quay/cmd/quay/cmd"

func main() {
	cmd.Execute()
}
