package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Noop27/lesson-store/domain/lesson"
	infra "github.com/Noop27/lesson-store/infra"
	"github.com/Noop27/lesson-store/infra/tracing"
)

type InventoryGatewayHttp struct {
	httpClient *http.Client
	baseURL    string
}

func NewInventoryGatewayHttp(httpClient *http.Client, baseURL string) *InventoryGatewayHttp {
	return &InventoryGatewayHttp{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

type decrementSpaceRequest struct {
	ID       lesson.ID `json:"id"`
	Quantity int       `json:"quantity"`
}

// DecrementSpace reduces the server-held space of one lesson by the
// quantity consumed in an order line.
func (g *InventoryGatewayHttp) DecrementSpace(ctx context.Context, id lesson.ID, quantity int) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	payload := decrementSpaceRequest{ID: id, Quantity: quantity}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.baseURL+"/lessons/"+id.String()+"/space", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.Inject(ctx, req.Header)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return infra.NewNetworkError(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusGatewayTimeout {
		return infra.NewTimeoutError("timeout decrementing space")
	}
	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		return infra.NewNetworkError("network error decrementing space")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.New("failed to decrement space")
	}
	return nil
}
