package sqldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := `UPDATE attendance SET is_paid = ? WHERE id IN (?, ?)`
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, `UPDATE attendance SET is_paid = $1 WHERE id IN ($2, $3)`, Postgres.rebind(q))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
