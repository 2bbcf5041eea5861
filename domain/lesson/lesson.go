package lesson

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ID is the canonical lesson identifier used as the cart key. Catalog
// responses encode it either as a bare string or as the legacy wrapped
// form {"$oid": "<hex>"}; both are normalized here, at the decoding
// boundary, so nothing downstream ever branches on encoding shape.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*id = ID(plain)
		return nil
	}

	var wrapped struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil || wrapped.OID == "" {
		return fmt.Errorf("lesson id: unsupported encoding: %s", data)
	}
	if _, err := bson.ObjectIDFromHex(wrapped.OID); err != nil {
		return fmt.Errorf("lesson id: invalid object id %q: %w", wrapped.OID, err)
	}
	*id = ID(wrapped.OID)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// Lesson is one purchasable class offering as last reported by the
// catalog. Space is mutated locally between refreshes.
type Lesson struct {
	ID       ID      `json:"id"`
	Topic    string  `json:"topic"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Space    int     `json:"space"`
}

// CartLine is a derived view entry: a cart quantity joined against the
// cached lesson it reserves. It is never stored.
type CartLine struct {
	ID       ID      `json:"id"`
	Topic    string  `json:"topic"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}
