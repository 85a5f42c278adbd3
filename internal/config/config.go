package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dujiao-next/backupsync/internal/logger"
	"github.com/dujiao-next/backupsync/internal/models"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Log     LogConfig     `mapstructure:"log"`
	Backup  BackupConfig  `mapstructure:"backup"`
	Repair  RepairConfig  `mapstructure:"repair"`
	Journal JournalConfig `mapstructure:"journal"`
}

// AppConfig 运行配置
type AppConfig struct {
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// BackupConfig 备份目录配置
type BackupConfig struct {
	Root         string `mapstructure:"root"`          // 备份根目录
	SyncedSuffix string `mapstructure:"synced_suffix"` // 默认输出目录后缀
}

// RepairConfig 修复规则配置
type RepairConfig struct {
	Seed          int64   `mapstructure:"seed"`           // 随机种子（0 表示按时间生成）
	PromotionRate float64 `mapstructure:"promotion_rate"` // 缺失 appliedPromotion 时生成促销的概率
	PasswordCost  int     `mapstructure:"password_cost"`  // bcrypt 成本
}

// JournalPoolConfig 同步日志库连接池配置
type JournalPoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// JournalConfig 同步运行记录配置
type JournalConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Driver  string            `mapstructure:"driver"` // sqlite / postgres
	DSN     string            `mapstructure:"dsn"`
	Pool    JournalPoolConfig `mapstructure:"pool"`
}

// ToPoolConfig 转换为 models 连接池配置
func (c JournalConfig) ToPoolConfig() models.DBPoolConfig {
	return models.DBPoolConfig{
		MaxOpenConns:           c.Pool.MaxOpenConns,
		MaxIdleConns:           c.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: c.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: c.Pool.ConnMaxIdleTimeSeconds,
	}
}

// Load 加载配置；path 为空时按默认路径查找 config.yml，找不到则使用环境变量与默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./etc")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("BACKUPSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // backup.root -> BACKUPSYNC_BACKUP_ROOT

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s failed: %w", path, err)
		}
		logger.Debugw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Debugw("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "backupsync.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("backup.root", "./backups")
	v.SetDefault("backup.synced_suffix", "-synced")
	v.SetDefault("repair.seed", 0)
	v.SetDefault("repair.promotion_rate", 0.3)
	v.SetDefault("repair.password_cost", 10)
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "./db/backupsync.db")
	v.SetDefault("journal.pool.max_open_conns", 1)
	v.SetDefault("journal.pool.max_idle_conns", 1)
	v.SetDefault("journal.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("journal.pool.conn_max_idle_time_seconds", 0)
}
