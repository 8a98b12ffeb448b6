package main

import (
	"os"

	"github.com/taylordotfish/fix-ardour-lv2-index/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
