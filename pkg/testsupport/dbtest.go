package testsupport

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a private in-memory database. Connections opened
// with the same name share it until the last one is closed.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	if name == "" {
		name = "placemarks"
	}
	return sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
}
