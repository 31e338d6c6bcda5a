// Command base62 encodes and decodes base62 numbers.
package main

import (
	"flag"
	"os"

	"github.com/Siddarth2230/domain-keys/internal/config"
	"github.com/Siddarth2230/domain-keys/internal/tools/base62"
)

func main() {
	cfg, err := base62.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := base62.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("base62: %v", err)
	}
}
