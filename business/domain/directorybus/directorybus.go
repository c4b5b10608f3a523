// Package directorybus provides business access to directory searches
// against the corporate identity provider.
package directorybus

import (
	"context"
	"errors"
	"fmt"

	"github.com/intradir/intradir/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound = errors.New("person not found")
)

// Searcher declares the behavior required by the identity provider
// implementation.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Person, error)
	QueryByLogin(ctx context.Context, login string) (Person, error)
}

// Core manages the set of APIs for directory access.
type Core struct {
	searcher Searcher
}

// NewCore constructs a directory core for api access.
func NewCore(searcher Searcher) *Core {
	return &Core{
		searcher: searcher,
	}
}

// Search finds directory entries matching the query string. The limit is
// clamped to [1,50] with a default of 10.
func (c *Core) Search(ctx context.Context, query string, limit int) ([]Person, error) {
	ctx, span := otel.AddSpan(ctx, "business.directorybus.search")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	people, err := c.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return people, nil
}

// QueryByLogin finds the directory entry for the given login.
func (c *Core) QueryByLogin(ctx context.Context, login string) (Person, error) {
	ctx, span := otel.AddSpan(ctx, "business.directorybus.querybylogin")
	defer span.End()

	person, err := c.searcher.QueryByLogin(ctx, login)
	if err != nil {
		return Person{}, fmt.Errorf("querybylogin[%s]: %w", login, err)
	}

	return person, nil
}
