// Package rtkey implements the rtkey command: generate routing keys and
// write them to stdout.
package rtkey

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Siddarth2230/domain-keys/pkg/idgen"
)

const maxCount = 10000

// Config holds the rtkey flags.
type Config struct {
	Count   int
	Verbose bool
	// Routes, when set, adds the route of each key among Routes.
	Routes uint
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Count: 1}
	fs.IntVar(&cfg.Count, "count", cfg.Count, "number of keys to generate")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "show the timestamp with each key")
	fs.UintVar(&cfg.Routes, "routes", 0, "show the route of each key among this many routes (1..128)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run writes cfg.Count keys to out. With -verbose or -routes every key gets
// its own line with details, otherwise keys are space separated.
func Run(cfg Config, out io.Writer, gen *idgen.RouteKey) error {
	if out == nil {
		return errors.New("output is required")
	}
	if cfg.Count < 1 || cfg.Count > maxCount {
		return fmt.Errorf("count must be 1..%d, got %d", maxCount, cfg.Count)
	}
	if cfg.Routes > uint(idgen.MaxRoutes) {
		return fmt.Errorf("routes must be at most %d, got %d", idgen.MaxRoutes, cfg.Routes)
	}
	if gen == nil {
		gen = idgen.NewRouteKey()
	}

	keys := make([]string, cfg.Count)
	for i := range keys {
		keys[i] = gen.Create()
	}

	if !cfg.Verbose && cfg.Routes == 0 {
		_, err := fmt.Fprintln(out, strings.Join(keys, " "))
		return err
	}

	for _, key := range keys {
		ts, err := idgen.ParseTimestamp(key)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("Key: %s, TimeStamp: %d", key, ts)
		if cfg.Routes > 0 {
			route, err := idgen.ParseRoute(key, uint8(cfg.Routes))
			if err != nil {
				return err
			}
			line += fmt.Sprintf(", Route: %d", route)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
