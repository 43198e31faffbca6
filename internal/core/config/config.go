package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level string
	JSON  bool
	// File 非空时日志同时落盘并按 lumberjack 切割
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Identity 注册确认与登录锁定策略
type Identity struct {
	PublicBaseURL      string // 确认邮件里的链接前缀
	ConfirmTokenTTLMin int
	LockoutThreshold   int
	LockoutWindowMin   int
	LockoutDurationMin int
	SeedAdmin          bool
	SeedAdminEmail     string
	SeedAdminPassword  string
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	SMTP     SMTP
	Identity Identity
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.Log.File != "" {
		if c.Log.MaxSizeMB <= 0 {
			c.Log.MaxSizeMB = 100
		}
		if c.Log.MaxBackups <= 0 {
			c.Log.MaxBackups = 7
		}
		if c.Log.MaxAgeDays <= 0 {
			c.Log.MaxAgeDays = 30
		}
	}
	if c.Identity.ConfirmTokenTTLMin <= 0 {
		c.Identity.ConfirmTokenTTLMin = 24 * 60
	}
	if c.Identity.LockoutThreshold <= 0 {
		c.Identity.LockoutThreshold = 5
	}
	if c.Identity.LockoutWindowMin <= 0 {
		c.Identity.LockoutWindowMin = 15
	}
	if c.Identity.LockoutDurationMin <= 0 {
		c.Identity.LockoutDurationMin = 15
	}
}
