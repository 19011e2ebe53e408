package main

import (
	"flag"
	"os"

	"github.com/louisbranch/seabattle/internal/platform/config"
	"github.com/louisbranch/seabattle/internal/tools/playertoken"
)

func main() {
	cfg, err := playertoken.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := playertoken.Run(cfg, os.Stdout); err != nil {
		config.Exitf("issue token: %v", err)
	}
}
