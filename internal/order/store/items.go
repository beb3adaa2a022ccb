package store

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeItems parses the items column. Rows written by older clients are not
// trusted: a line without product, description or a positive quantity makes
// the whole order unreadable instead of silently dropping it.
func decodeItems(raw []byte) ([]order.Item, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty items document: %w", apperr.ErrMalformedDocument)
	}

	var items []order.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding items: %w: %w", apperr.ErrMalformedDocument, err)
	}

	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w: %w", i, apperr.ErrMalformedDocument, err)
		}
	}

	return items, nil
}

func encodeItems(items []order.Item) ([]byte, error) {
	if items == nil {
		items = []order.Item{}
	}

	return json.Marshal(items)
}
