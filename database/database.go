package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// pure Go driver registered as "sqlite"
	_ "modernc.org/sqlite"

	"github.com/rpupo63/project-showcase/config"
	"github.com/rpupo63/project-showcase/errs"
)

type Database struct {
	db          *gorm.DB
	projectRepo *ProjectRepo
	commentRepo *CommentRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:          db,
		projectRepo: NewProjectRepo(db),
		commentRepo: NewCommentRepo(db),
	}
}

// Open connects to the database selected by cfg.DBType.
func Open(cfg config.Config) (Database, error) {
	var dialector gorm.Dialector
	switch cfg.DBType {
	case config.DBTypeSQLite:
		dialector = SQLiteDialector(cfg.SQLitePath)
	case config.DBTypePostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		})
	default:
		return Database{}, errs.NewBadRequestError(fmt.Sprintf("unsupported DB_TYPE %q", cfg.DBType))
	}

	db, err := gorm.Open(dialector, GormConfig(log.Logger))
	if err != nil {
		return Database{}, errs.NewDatabaseError("connect", cfg.DBType, err)
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return Database{}, errs.NewDatabaseError("ping", cfg.DBType, err)
	}

	if cfg.DBType == config.DBTypeSQLite {
		// single writer
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	return New(db), nil
}

// SQLiteDialector opens path with foreign keys enforced.
func SQLiteDialector(path string) gorm.Dialector {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	return sqlite.New(sqlite.Config{
		DriverName: "sqlite",
		DSN:        dsn,
	})
}

// GormConfig routes gorm's logger through zerolog and stamps times in UTC.
func GormConfig(zl zerolog.Logger) *gorm.Config {
	gormLogger := zl.With().Str("component", "gorm").Logger()
	return &gorm.Config{
		PrepareStmt: false,
		Logger: logger.New(
			&gormLogger,
			logger.Config{
				SlowThreshold:             10 * time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

// GetDB returns the shared connection.
func (d Database) GetDB() *gorm.DB {
	return d.db
}

// Ping checks that the database answers.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d Database) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
