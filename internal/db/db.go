package db

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lojf/parish/internal/models"
)

var conn *gorm.DB

// DSN appends the connection parameters used for every database file.
func DSN(path string) string {
	return path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}

// Init opens (creating if needed) the sqlite database at path and migrates
// the document table.
func Init(path string) error {
	var err error
	conn, err = gorm.Open(sqlite.Open(DSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(&models.Document{}); err != nil {
		return errors.Wrap(err, "auto-migrate")
	}
	// Composite index GORM doesn't create from struct tags.
	if err := conn.Exec("CREATE INDEX IF NOT EXISTS idx_doc_collection_created ON documents(collection, created_at)").Error; err != nil {
		return errors.Wrap(err, "create index")
	}

	logrus.WithField("path", path).Info("database ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}
