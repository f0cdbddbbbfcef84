package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"moul.io/zapgorm2"

	"github.com/oscardel13/calorie-tracker/models"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Backup   BackupConfig
	LogLevel string
}

type ServerConfig struct {
	Port         string
	GinMode      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig selects the gorm driver. Driver is "sqlite" (Path) or
// "postgres" (Host..Port).
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	Debug    bool
}

type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
}

// BackupConfig enables S3 uploads of store exports when Bucket is set.
type BackupConfig struct {
	Bucket string
	Region string
	Prefix string
}

func (b BackupConfig) Enabled() bool { return b.Bucket != "" }

// LoadEnvFile loads a .env file into the environment. A missing file is not
// an error; variables already set win over the file.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			GinMode:      getEnv("GIN_MODE", "release"),
			ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 15)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 15)) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DATABASE_PATH", "caltrack.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "caltrack"),
			Port:     getEnv("DB_PORT", "5432"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenDuration: time.Duration(getEnvInt("TOKEN_DURATION_HOURS", 72)) * time.Hour,
		},
		Backup: BackupConfig{
			Bucket: os.Getenv("S3_BUCKET"),
			Region: getEnv("S3_REGION", os.Getenv("AWS_REGION")),
			Prefix: getEnv("S3_PREFIX", "backups"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// OpenDB connects with the configured driver and migrates the schema. gorm
// logs go to zlog; a nil zlog discards them.
func OpenDB(cfg DatabaseConfig, zlog *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	if zlog == nil {
		zlog = zap.NewNop()
	}
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	zl := zapgorm2.New(zlog.Named("gorm"))
	zl.SlowThreshold = time.Second
	zl.IgnoreRecordNotFoundError = true
	gormLogger := zl.LogMode(logLevel)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver != "postgres" {
		// SQLite allows one writer; a single connection also keeps an
		// in-memory database alive for the life of the pool.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&models.UserRecord{},
		&models.WeekRecord{},
		&models.SavedFoodRecord{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return db, nil
}

// Close releases the database pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
