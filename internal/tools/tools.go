// Package tools holds the handlers a routed query is dispatched to.
package tools

import "context"

// Tool handles one kind of routed query and returns a typed result.
type Tool[T any] interface {
	Run(ctx context.Context, input string) (T, error)
}
