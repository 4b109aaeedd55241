package model

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/colabio/crowdfund/src/utils/config"
	l "github.com/colabio/crowdfund/src/utils/logger"
	"github.com/colabio/crowdfund/src/utils/model/sql_migrations"

	"github.com/glebarez/sqlite"
	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

func Connect(ctx context.Context, dbConfig *config.Database, username, password, applicationName string) (self *gorm.DB, err error) {
	log := l.NewSublogger("db")

	logger := logger.New(log,
		logger.Config{
			SlowThreshold:             500 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Error,           // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,                  // Disable color
		},
	)

	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s/crowdfund",
			dbConfig.Host,
			dbConfig.Port,
			username,
			password,
			dbConfig.Name,
			dbConfig.SslMode,
			applicationName,
		)
		dialector = postgres.Open(dsn)
	case DriverSqlite:
		dialector = sqlite.Open(dbConfig.Path)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownDriver, dbConfig.Driver)
		return
	}

	self, err = gorm.Open(dialector, &gorm.Config{Logger: logger})
	if err != nil {
		return
	}

	db, err := self.DB()
	if err != nil {
		return
	}

	if dbConfig.Driver == DriverSqlite {
		// Every new connection would see a separate in-memory database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(dbConfig.MaxOpenConns)
		db.SetMaxIdleConns(dbConfig.MaxIdleConns)
		db.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)
		db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	}

	err = ping(ctx, dbConfig, self)
	if err != nil {
		return
	}

	return
}

func NewConnection(ctx context.Context, config *config.Config, applicationName string) (self *gorm.DB, err error) {
	if config.Database.Driver == DriverSqlite {
		// Single connection, migrations have to run on it
		self, err = Connect(ctx, &config.Database, "", "", applicationName)
		if err != nil {
			return
		}
		err = migrateDB(self, "sqlite3")
		return
	}

	err = Migrate(ctx, config)
	if err != nil {
		return
	}

	return Connect(ctx, &config.Database, config.Database.User, config.Database.Password, applicationName)
}

func Migrate(ctx context.Context, config *config.Config) (err error) {
	log := l.NewSublogger("db-migrate")

	if config.Database.MigrationUser == "" || config.Database.MigrationPassword == "" {
		log.Info("Migration user not set, skipping migrations")
		return
	}

	// Use special migration user
	self, err := Connect(ctx, &config.Database, config.Database.MigrationUser, config.Database.MigrationPassword, "migration")
	if err != nil {
		return
	}

	db, err := self.DB()
	if err != nil {
		return
	}
	defer db.Close()

	err = migrateDB(self, "postgres")
	if err != nil {
		return
	}

	config.Database.MigrationUser = ""
	config.Database.MigrationPassword = ""

	return
}

func migrateDB(self *gorm.DB, dialect string) (err error) {
	log := l.NewSublogger("db-migrate")

	migrations := &migrate.HttpFileSystemMigrationSource{
		FileSystem: http.FS(sql_migrations.FS),
	}

	db, err := self.DB()
	if err != nil {
		return
	}

	n, err := migrate.Exec(db, dialect, migrations, migrate.Up)
	if err != nil {
		return
	}

	log.WithField("num", n).WithField("dialect", dialect).Info("Applied migrations")
	return
}

func ping(ctx context.Context, dbConfig *config.Database, db *gorm.DB) (err error) {
	if dbConfig.PingTimeout < 0 {
		// Ping disabled
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbConfig.PingTimeout)
	defer cancel()

	err = sqlDB.PingContext(dbCtx)
	if err != nil {
		return
	}
	return
}
