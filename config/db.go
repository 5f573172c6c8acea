package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"firehorse/global"
	"firehorse/services"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func initDB() {
	db, err := OpenDB(AppConfig.Database.Driver, AppConfig.Database.Dsn)
	if err != nil {
		global.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		global.Logger.Fatal("Failed to get database handle", zap.Error(err))
	}
	if AppConfig.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(AppConfig.Database.MaxIdleConns)
	}
	if AppConfig.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(AppConfig.Database.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	store := services.NewArtworkStore(db)
	if err := store.Migrate(); err != nil {
		global.Logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	if AppConfig.App.SeedSamples {
		n, err := store.Seed(context.Background())
		if err != nil {
			global.Logger.Warn("Failed to seed sample artworks", zap.Error(err))
		} else if n > 0 {
			global.Logger.Info("Sample artworks added", zap.Int("count", n))
		}
	}

	global.Db = db
	global.Logger.Info("Database initialized",
		zap.String("driver", AppConfig.Database.Driver),
		zap.String("dsn", redactDSN(AppConfig.Database.Driver, AppConfig.Database.Dsn)))
}

// OpenDB 按驱动打开数据库；时间统一存 UTC，唯一约束冲突翻译成 gorm.ErrDuplicatedKey
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(sqliteDSN(dsn))
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(global.Logger, 200*time.Millisecond),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return db, nil
}

// sqlite 连接参数：写事务一开始就拿写锁，拿不到时等待而不是直接报 database is locked
var sqliteParams = []string{"_busy_timeout=5000", "_journal_mode=WAL", "_txlock=immediate"}

// sqliteDSN 补上未显式指定的连接参数
func sqliteDSN(dsn string) string {
	for _, p := range sqliteParams {
		key := p[:strings.Index(p, "=")+1]
		if strings.Contains(dsn, key) {
			continue
		}
		sep := "&"
		if !strings.Contains(dsn, "?") {
			sep = "?"
		}
		dsn += sep + p
	}
	return dsn
}

func redactDSN(driver, dsn string) string {
	if driver == "mysql" {
		return "(redacted)"
	}
	return dsn
}
