package db

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func Initialize(path string) *sqlx.DB {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		panic(err)
	}
	slog.Info("Initialised DB connection", slog.String("db_path", path))
	return db
}
