package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindCategoryQuery_LiteralMatch(t *testing.T) {
	assert.Contains(t, findCategoryQuery, "strpos(lower($2), lower(pattern)) > 0")
	assert.NotContains(t, findCategoryQuery, "LIKE")
}
