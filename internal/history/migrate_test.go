package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create runs", migrations[0].Description)
	assert.Contains(t, migrations[0].UpSQL, "CREATE TABLE IF NOT EXISTS runs")
	assert.Contains(t, migrations[0].DownSQL, "DROP TABLE IF EXISTS runs")
	assert.Equal(t, 2, migrations[1].Version)
}

func TestParseMigration(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		up, down string
	}{
		{"no markers", "CREATE TABLE x (a INT);", "CREATE TABLE x (a INT);", ""},
		{"up only", "-- +migrate Up\nSELECT 1;", "SELECT 1;", ""},
		{"both", "-- +migrate Up\nA;\n-- +migrate Down\nB;", "A;", "B;"},
		{"down first", "-- +migrate Down\nB;\n-- +migrate Up\nA;", "A;", "B;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := parseMigration(tt.content)
			assert.Equal(t, tt.up, up)
			assert.Equal(t, tt.down, down)
		})
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n CREATE INDEX i ON a (x) ;\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, got)
}
