package postgres

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestPending_OrdersUpFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b.up.sql":   {Data: []byte("SELECT 2")},
		"m/0001_a.up.sql":   {Data: []byte("SELECT 1")},
		"m/0001_a.down.sql": {Data: []byte("SELECT 0")},
		"m/README":          {Data: []byte("x")},
	}
	names, err := Pending(fsys, "m")
	require.NoError(t, err)
	require.Equal(t, []string{"0001_a.up.sql", "0002_b.up.sql"}, names)

	_, err = Pending(fsys, "missing")
	require.Error(t, err)
}

func TestSplitStatements(t *testing.T) {
	sql := `-- leading comment
CREATE TABLE a (id INT);

-- index for lookups
CREATE INDEX a_idx ON a (id);
   ;
`
	stmts := SplitStatements(sql)
	require.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX a_idx ON a (id)"}, stmts)
}

func TestEmbeddedMigrations(t *testing.T) {
	fsys := Migrations()
	names, err := Pending(fsys, ".")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	require.Equal(t, "0001_init.up.sql", names[0])

	b, err := fs.ReadFile(fsys, names[0])
	require.NoError(t, err)
	stmts := SplitStatements(string(b))
	for _, table := range []string{"vehicles", "profiles", "rentals", "sales", "testimonials", "faqs"} {
		found := false
		for _, s := range stmts {
			if strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS "+table+" ") {
				found = true
			}
		}
		require.True(t, found, "no CREATE TABLE for %s", table)
	}
}
