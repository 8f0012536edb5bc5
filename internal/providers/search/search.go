package search

import "context"

type Provider interface {
	// Search returns web results for the query rendered as plain text,
	// ready to hand back to the reasoning model as an observation.
	Search(ctx context.Context, query string) (string, error)
}
