package main

import (
	"os"

	"github.com/nkarpov/telesync/internal/ctl"
)

func main() {
	if err := ctl.Execute(); err != nil {
		os.Exit(1)
	}
}
