package protocols

import (
	"context"

	"github.com/Noop27/lesson-store/domain/lesson"
)

type SortField string

const (
	SortByTopic    SortField = "topic"
	SortByLocation SortField = "location"
	SortByPrice    SortField = "price"
	SortBySpace    SortField = "space"
)

// Filter parameterizes a catalog search. The server is authoritative for
// filtering and ordering; the gateway only encodes these.
type Filter struct {
	Search    string
	MinSpace  int
	SortBy    SortField
	Ascending bool
}

type CatalogGateway interface {
	Search(ctx context.Context, filter Filter) ([]lesson.Lesson, error)
}
