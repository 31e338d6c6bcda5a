// Package txkey implements the txkey command: generate one timestamp key.
package txkey

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/Siddarth2230/domain-keys/pkg/idgen"
)

type Config struct {
	Verbose bool
	Size    int
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Size: idgen.DefaultTxKeySize}
	fs.BoolVar(&cfg.Verbose, "verbose", false, "show the timestamp with the key")
	fs.IntVar(&cfg.Size, "size", cfg.Size, fmt.Sprintf("key length (%d..%d)", idgen.MinTxKeySize, idgen.MaxTxKeySize))
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates a key and writes it to out. opts configure the generator.
func Run(cfg Config, out io.Writer, opts ...idgen.Option) error {
	if out == nil {
		return errors.New("output is required")
	}

	gen, err := idgen.NewTxKey(cfg.Size, opts...)
	if err != nil {
		return err
	}

	key := gen.Create()
	if !cfg.Verbose {
		_, err = fmt.Fprintln(out, key)
		return err
	}

	ts, err := gen.ParseTimestamp(key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Key: %s, TimeStamp: %d\n", key, ts)
	return err
}
