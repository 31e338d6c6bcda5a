package idgen

import "context"

// Generator defines the interface for generating keys.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

var (
	_ Generator = (*RouteKey)(nil)
	_ Generator = (*TxKey)(nil)
)
