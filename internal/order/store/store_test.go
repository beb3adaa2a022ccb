package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderQueries_ReadNameSnapshots(t *testing.T) {
	assert.Contains(t, selectOrderColumns, "client_name")
	assert.Contains(t, selectOrderColumns, "seller_name")
	assert.NotContains(t, fromOrders, "users")
}
