package main

import (
	"github.com/MeKo-Tech/yolodata/cmd/yolodata/cmd"
)

func main() {
	cmd.Execute()
}
