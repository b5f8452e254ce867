// Package storage provides the sqlite-backed job store and the audio file
// store.
package storage

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

// OpenDB opens (and migrates) the sqlite database at dsn. Parent directories
// are created for file-backed databases.
func OpenDB(dsn string) (*gorm.DB, error) {
	const op = "storage.open"

	if dsn == "" {
		dsn = ":memory:"
	}
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindStorage, op, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, op, err)
	}

	if err := db.AutoMigrate(&JobRecord{}); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, op, err)
	}
	return db, nil
}
