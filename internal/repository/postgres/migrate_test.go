package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedMigrations(t *testing.T) {
	m := NewMigrator(nil)

	migrations, err := m.Load()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_init.sql", migrations[0].Name)
	for i := 1; i < len(migrations); i++ {
		assert.Greater(t, migrations[i].Version, migrations[i-1].Version)
	}

	for _, table := range []string{"users", "forum_posts", "medical_records", "sos_contracts", "audit_events"} {
		assert.True(t, strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
}

func TestConditions(t *testing.T) {
	var c conditions
	assert.Equal(t, "", c.where())

	c.add("region = $%d", "Lazio")
	c.add("LOWER(city) = LOWER($%d)", "Roma")
	assert.Equal(t, " WHERE region = $1 AND LOWER(city) = LOWER($2)", c.where())
	assert.Equal(t, []interface{}{"Lazio", "Roma"}, c.args)
}
