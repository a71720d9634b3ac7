package main

import (
	"github.com/flipbytes-dk/absolutely-you/cmd"
)

func main() {
	cmd.Execute()
}
