package app

import (
	"fmt"
	"strings"

	"github.com/SamEvrald/logbook-app/internal/store"
	"github.com/SamEvrald/logbook-app/internal/store/postgres"
	"github.com/SamEvrald/logbook-app/internal/store/sqlite"
)

func NewStore(dsn string) (store.LogbookStore, error) {
	var dbType store.DatabaseType
	switch {
	case strings.HasPrefix(dsn, "postgres"):
		dbType = store.DBTypePostgres
	case dsn != "":
		dbType = store.DBTypeSQLite
	}

	switch dbType {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(dsn)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %q", dsn)
	}
}
