// Command txkey generates a timestamp key.
package main

import (
	"flag"
	"os"

	"github.com/Siddarth2230/domain-keys/internal/config"
	"github.com/Siddarth2230/domain-keys/internal/tools/txkey"
)

func main() {
	cfg, err := txkey.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := txkey.Run(cfg, os.Stdout); err != nil {
		config.Exitf("txkey: %v", err)
	}
}
