package db

import (
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vietanh2810/eventbooking-api/internal/config"
	"github.com/vietanh2810/eventbooking-api/internal/repository/dao"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	return OpenPostgresWithURL(conf.DSN())
}

func OpenPostgresWithURL(url string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return initDB(db, "postgres")
}

func OpenMySQL(conf *config.MySQLConfig) (*gorm.DB, error) {
	dsn := gomysql.NewConfig()
	dsn.User = conf.User
	dsn.Passwd = conf.Password
	dsn.Net = "tcp"
	dsn.Addr = conf.Host + ":" + conf.Port
	dsn.DBName = conf.DB
	dsn.ParseTime = true
	dsn.Loc = time.UTC

	db, err := gorm.Open(mysql.New(mysql.Config{DSNConfig: dsn}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return initDB(db, "mysql")
}

// OpenSQLite opens a single-connection sqlite database for development and
// tests. SQLite has no row locks, so the one connection serializes every
// booking, across all events.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return initDB(db, "sqlite")
}

func initDB(db *gorm.DB, driver string) (*gorm.DB, error) {
	if err := dao.InitTables(db); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	zap.L().Info("database ready", zap.String("driver", driver))

	return db, nil
}
