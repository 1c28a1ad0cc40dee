package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CartItem is one line of a cart snapshot. Name and price are captured from the
// catalog at add-time and never re-fetched afterwards.
type CartItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// UnmarshalJSON re-parses cached payloads defensively: older writers stored
// price and quantity as strings, so both scalar forms are accepted.
func (ci *CartItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID json.RawMessage `json:"product_id"`
		Name      string          `json:"name"`
		Price     json.RawMessage `json:"price"`
		Quantity  json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	productID, err := jsonInt(raw.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product_id: %w", err)
	}
	price, err := jsonFloat(raw.Price)
	if err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}
	quantity, err := jsonInt(raw.Quantity)
	if err != nil {
		return fmt.Errorf("invalid quantity: %w", err)
	}

	ci.ProductID = productID
	ci.Name = raw.Name
	ci.Price = price
	ci.Quantity = quantity
	return nil
}

func jsonFloat(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	s := string(raw)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return strconv.ParseFloat(s, 64)
}

func jsonInt(raw json.RawMessage) (int, error) {
	f, err := jsonFloat(raw)
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return n, nil
}

// UserKey identifies a cart owner: either a registered user id or a guest
// token. It accepts both JSON strings and numbers so numeric user ids can be
// posted either way.
type UserKey string

func (k *UserKey) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	*k = UserKey(s)
	return nil
}

func (k UserKey) String() string {
	return string(k)
}
