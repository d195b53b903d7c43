package model

import (
	"context"
	"time"

	"github.com/skillchain/issuer/src/utils/config"
	l "github.com/skillchain/issuer/src/utils/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(ctx context.Context, config *config.Journal) (self *gorm.DB, err error) {
	log := l.NewSublogger("db")

	logger := logger.New(log,
		logger.Config{
			SlowThreshold:             500 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Error,           // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,                  // Disable color
		},
	)

	self, err = gorm.Open(sqlite.Open(config.Path+"?_busy_timeout=5000&_journal_mode=WAL"), &gorm.Config{Logger: logger})
	if err != nil {
		return
	}

	db, err := self.DB()
	if err != nil {
		return
	}

	// sqlite allows one writer
	db.SetMaxOpenConns(1)

	err = db.PingContext(ctx)
	if err != nil {
		return
	}

	err = self.WithContext(ctx).AutoMigrate(&JournalEntry{})
	if err != nil {
		return
	}

	log.WithField("path", config.Path).Debug("Journal opened")
	return
}
