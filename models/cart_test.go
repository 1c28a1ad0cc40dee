package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartItem_UnmarshalNumericScalars(t *testing.T) {
	var item CartItem
	err := json.Unmarshal([]byte(`{"product_id":7,"name":"Mocha","price":9.99,"quantity":2}`), &item)
	require.NoError(t, err)
	assert.Equal(t, CartItem{ProductID: 7, Name: "Mocha", Price: 9.99, Quantity: 2}, item)
}

func TestCartItem_UnmarshalStringScalars(t *testing.T) {
	var item CartItem
	err := json.Unmarshal([]byte(`{"product_id":"7","name":"Mocha","price":"9.99","quantity":"2"}`), &item)
	require.NoError(t, err)
	assert.Equal(t, CartItem{ProductID: 7, Name: "Mocha", Price: 9.99, Quantity: 2}, item)
}

func TestCartItem_UnmarshalMissingScalarsDefaultToZero(t *testing.T) {
	var item CartItem
	err := json.Unmarshal([]byte(`{"name":"Mocha"}`), &item)
	require.NoError(t, err)
	assert.Equal(t, CartItem{Name: "Mocha"}, item)
}

func TestCartItem_UnmarshalRejectsGarbage(t *testing.T) {
	var item CartItem

	err := json.Unmarshal([]byte(`{"product_id":7,"price":"cheap","quantity":1}`), &item)
	assert.ErrorContains(t, err, "invalid price")

	err = json.Unmarshal([]byte(`{"product_id":7,"price":1,"quantity":2.5}`), &item)
	assert.ErrorContains(t, err, "invalid quantity")
}

func TestCartItem_MarshalEmitsNumbers(t *testing.T) {
	payload, err := json.Marshal(CartItem{ProductID: 7, Name: "Mocha", Price: 9.99, Quantity: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_id":7,"name":"Mocha","price":9.99,"quantity":2}`, string(payload))
}

func TestUserKey_UnmarshalStringOrNumber(t *testing.T) {
	var req CartAddRequest
	require.NoError(t, json.Unmarshal([]byte(`{"userId":"guest-abc","productId":1,"quantity":1}`), &req))
	assert.Equal(t, "guest-abc", req.UserID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"userId":42,"productId":1,"quantity":1}`), &req))
	assert.Equal(t, "42", req.UserID.String())
}
