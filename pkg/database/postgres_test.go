package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductNameIndexIsCaseInsensitivePerOwner(t *testing.T) {
	// Uniqueness must hold on (user_id, LOWER(name)), not the raw
	// column, or "Rice" and "rice" can coexist for one owner.
	assert.Contains(t, productNameIndexDDL, "CREATE UNIQUE INDEX")
	assert.Contains(t, productNameIndexDDL, "user_id")
	assert.Contains(t, productNameIndexDDL, "LOWER(name)")
	assert.Contains(t, productNameIndexDDL, "IF NOT EXISTS")
}
