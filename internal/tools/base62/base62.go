// Package base62 implements the base62 command: encode a uint64, decode a
// base62 string, or encode the current time in nanoseconds.
package base62

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Siddarth2230/domain-keys/pkg/idgen"
)

var ErrNoAction = errors.New("must pass -encode, -decode or -timestamp")

type Config struct {
	Encode    string
	Decode    string
	Timestamp bool
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.Encode, "encode", "", "encode a uint64, e.g. -encode 12345 prints 3D7")
	fs.StringVar(&cfg.Decode, "decode", "", "decode a base62 string, e.g. -decode 3D7 prints 12345")
	fs.BoolVar(&cfg.Timestamp, "timestamp", false, "encode the current UTC time in nanoseconds")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run performs the first requested action, in the order encode, decode,
// timestamp. now may be nil.
func Run(cfg Config, out io.Writer, now func() time.Time) error {
	if out == nil {
		return errors.New("output is required")
	}
	if now == nil {
		now = time.Now
	}

	switch {
	case cfg.Encode != "":
		n, err := strconv.ParseUint(cfg.Encode, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %q: %w", cfg.Encode, err)
		}
		_, err = fmt.Fprintln(out, idgen.Encode(n))
		return err

	case cfg.Decode != "":
		n, err := idgen.Decode(cfg.Decode)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, n)
		return err

	case cfg.Timestamp:
		ns := now().UnixNano()
		if ns < 0 {
			return errors.New("clock is before the unix epoch")
		}
		_, err := fmt.Fprintf(out, "%d -> %s\n", ns, idgen.Encode(uint64(ns)))
		return err
	}

	return ErrNoAction
}
