package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordsearch/assets"
)

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	assert.FileExists(t, path)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, assets.Migrations()))
	require.NoError(t, Migrate(db, assets.Migrations()))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 2, n)

	_, err = db.Exec(`INSERT INTO best_scores (player_id, elapsed_ms, achieved_at) VALUES ('p', 1, 'now')`)
	assert.NoError(t, err)
}

func TestMigrateAppliesInLexicalOrder(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	files := fstest.MapFS{
		"002_fill.sql":  {Data: []byte(`INSERT INTO t(v) VALUES ('b');`)},
		"001_table.sql": {Data: []byte(`CREATE TABLE t (v TEXT);`)},
		"README.md":     {Data: []byte(`ignored`)},
	}
	require.NoError(t, Migrate(db, files))

	var v string
	require.NoError(t, db.QueryRow(`SELECT v FROM t`).Scan(&v))
	assert.Equal(t, "b", v)
}

func TestMigrateReportsBadScript(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	err = Migrate(db, fstest.MapFS{"001_bad.sql": {Data: []byte(`CREATE NONSENSE;`)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_bad.sql")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Zero(t, n)
}

func TestMigrateRunsSelfManagedScripts(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	files := fstest.MapFS{
		"001_tables.sql": {Data: []byte(`
CREATE TABLE players (id TEXT PRIMARY KEY);
CREATE TABLE solves (player_id TEXT NOT NULL REFERENCES players(id), ms INTEGER);
INSERT INTO players(id) VALUES ('p1');
INSERT INTO solves(player_id, ms) VALUES ('p1', 4200);`)},
		// Table rebuild with foreign keys off, managing its own transaction.
		"002_rebuild.sql": {Data: []byte(`
PRAGMA foreign_keys=OFF;
BEGIN TRANSACTION;
CREATE TABLE solves_new (player_id TEXT NOT NULL REFERENCES players(id), ms INTEGER NOT NULL, hints INTEGER NOT NULL DEFAULT 0);
INSERT INTO solves_new(player_id, ms) SELECT player_id, ms FROM solves;
DROP TABLE solves;
ALTER TABLE solves_new RENAME TO solves;
COMMIT;
PRAGMA foreign_keys=ON;`)},
	}
	require.NoError(t, Migrate(db, files))
	require.NoError(t, Migrate(db, files))

	var ms, hints int
	require.NoError(t, db.QueryRow(`SELECT ms, hints FROM solves WHERE player_id='p1'`).Scan(&ms, &hints))
	assert.Equal(t, 4200, ms)
	assert.Zero(t, hints)

	var names []string
	rows, err := db.Query(`SELECT name FROM _migrations ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"001_tables.sql", "002_rebuild.sql"}, names)
}
