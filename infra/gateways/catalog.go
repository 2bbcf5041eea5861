package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Noop27/lesson-store/domain/lesson"
	infra "github.com/Noop27/lesson-store/infra"
	"github.com/Noop27/lesson-store/infra/tracing"
	protocols "github.com/Noop27/lesson-store/protocols"
)

type CatalogGatewayHttp struct {
	httpClient *http.Client
	baseURL    string
}

func NewCatalogGatewayHttp(httpClient *http.Client, baseURL string) *CatalogGatewayHttp {
	return &CatalogGatewayHttp{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

func (g *CatalogGatewayHttp) Search(ctx context.Context, filter protocols.Filter) ([]lesson.Lesson, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	endpoint, err := url.Parse(g.baseURL + "/lessons")
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.MinSpace > 0 {
		query.Set("minSpace", strconv.Itoa(filter.MinSpace))
	}
	if filter.SortBy != "" {
		query.Set("sortBy", string(filter.SortBy))
	}
	if filter.Ascending {
		query.Set("order", "asc")
	} else {
		query.Set("order", "desc")
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	tracing.Inject(ctx, req.Header)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, infra.NewNetworkError(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusGatewayTimeout {
		return nil, infra.NewTimeoutError("timeout searching lessons")
	}
	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		return nil, infra.NewNetworkError("network error searching lessons")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to search lessons")
	}
	var lessons []lesson.Lesson
	if err := json.NewDecoder(resp.Body).Decode(&lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}
