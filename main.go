package main

import (
	"os"

	"github.com/siyuan-infoblox/dartfix/pkg/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
