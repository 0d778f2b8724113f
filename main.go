package main

import "github.com/zalepa/delinquance/cmd"

func main() {
	cmd.Execute()
}
