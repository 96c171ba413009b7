package main

import (
	"flag"
	"os"

	"github.com/avasar/portal/internal/platform/config"
	"github.com/avasar/portal/internal/tools/otpsecret"
)

func main() {
	cfg, err := otpsecret.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := otpsecret.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("generate secret: %v", err)
	}
}
