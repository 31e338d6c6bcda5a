package base62

import (
	"bytes"
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/Siddarth2230/domain-keys/pkg/idgen"
)

func TestRun(t *testing.T) {
	now := func() time.Time { return time.Unix(0, 1000000) }

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"encode", Config{Encode: "12345"}, "3D7\n"},
		{"encode max", Config{Encode: "18446744073709551615"}, "LygHa16AHYF\n"},
		{"decode", Config{Decode: "zaZA90"}, "56424431326\n"},
		{"timestamp", Config{Timestamp: true}, "1000000 -> 4C92\n"},
		{"encode wins", Config{Encode: "0", Decode: "zz"}, "0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := Run(tt.cfg, buf, now); err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	if err := Run(Config{}, &bytes.Buffer{}, nil); !errors.Is(err, ErrNoAction) {
		t.Errorf("expected ErrNoAction, got %v", err)
	}
	if err := Run(Config{Encode: "-1"}, &bytes.Buffer{}, nil); err == nil {
		t.Error("expected error for negative number")
	}
	if err := Run(Config{Decode: "a+b"}, &bytes.Buffer{}, nil); !errors.Is(err, idgen.ErrInvalidCharacter) {
		t.Errorf("expected ErrInvalidCharacter, got %v", err)
	}
	if err := Run(Config{Decode: "LygHa16AHYG"}, &bytes.Buffer{}, nil); !errors.Is(err, idgen.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("base62", flag.ContinueOnError), []string{"-decode", "3D7", "-timestamp"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Decode != "3D7" || !cfg.Timestamp || cfg.Encode != "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
