// Command rtkey generates routing keys.
package main

import (
	"flag"
	"os"

	"github.com/Siddarth2230/domain-keys/internal/config"
	"github.com/Siddarth2230/domain-keys/internal/tools/rtkey"
)

func main() {
	cfg, err := rtkey.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := rtkey.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("rtkey: %v", err)
	}
}
