package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_DollarPlaceholders(t *testing.T) {
	query, args, err := Select("id", "value").
		From("documents").
		Where(squirrel.Eq{"collection": "appointments/u1"}).
		Where(squirrel.Eq{"id": "a1"}).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, value FROM documents WHERE collection = $1 AND id = $2", query)
	assert.Equal(t, []interface{}{"appointments/u1", "a1"}, args)
}

func TestDelete(t *testing.T) {
	query, args, err := Delete("documents").Where(squirrel.Eq{"id": "x"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM documents WHERE id = $1", query)
	assert.Equal(t, []interface{}{"x"}, args)
}
