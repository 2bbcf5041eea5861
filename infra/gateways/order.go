package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	infra "github.com/Noop27/lesson-store/infra"
	"github.com/Noop27/lesson-store/infra/tracing"
	protocols "github.com/Noop27/lesson-store/protocols"
)

type OrderGatewayHttp struct {
	httpClient *http.Client
	baseURL    string
}

func NewOrderGatewayHttp(httpClient *http.Client, baseURL string) *OrderGatewayHttp {
	return &OrderGatewayHttp{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

type createOrderResponse struct {
	ID string `json:"id"`
}

func (g *OrderGatewayHttp) Create(ctx context.Context, order protocols.Order) (*protocols.PlacedOrder, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	payloadBytes, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.Inject(ctx, req.Header)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, infra.NewNetworkError(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusGatewayTimeout {
		return nil, infra.NewTimeoutError("timeout creating order")
	}
	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		return nil, infra.NewNetworkError("network error creating order")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("failed to create order")
	}
	var created createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, err
	}
	return &protocols.PlacedOrder{ID: created.ID}, nil
}
