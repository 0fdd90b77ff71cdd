// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Session       SessionConfig       `mapstructure:"session"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Calendar      CalendarConfig      `mapstructure:"calendar"`
	Collaborator  CollaboratorConfig  `mapstructure:"collaborator"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	PublicDir string `mapstructure:"public_dir"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	Driver string      `mapstructure:"driver"` // mysql 或 postgres
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig 存储会话 cookie 与空闲过期的配置。
type SessionConfig struct {
	CookieName  string        `mapstructure:"cookie_name"`
	Secret      string        `mapstructure:"secret"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Secure      bool          `mapstructure:"secure"`
}

// JWTConfig 存储 bearer token 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// CalendarConfig 决定日/月窗口按哪个时区切分。
type CalendarConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location 返回日历时区，无法解析时回退到 time.Local。
func (c CalendarConfig) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// CollaboratorConfig 存储外部脚本（NLP 与子网计算）的调用配置。
type CollaboratorConfig struct {
	Python        string        `mapstructure:"python"`
	ScriptsDir    string        `mapstructure:"scripts_dir"`
	ChatScript    string        `mapstructure:"chat_script"`
	IPv4Script    string        `mapstructure:"ipv4_script"`
	IPv6Script    string        `mapstructure:"ipv6_script"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SubnetTimeout time.Duration `mapstructure:"subnet_timeout"`
}

// KafkaConfig 存储 Kafka 相关的配置。Brokers 为空时不发布对话事件。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。Addresses 为空时关闭检索。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。Endpoint 为空时关闭导出。
type MinIOConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	BucketName      string        `mapstructure:"bucket_name"`
	URLExpiry       time.Duration `mapstructure:"url_expiry"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.public_dir", "public")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("session.cookie_name", "tigersai")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.idle_timeout", time.Hour)
	v.SetDefault("session.secure", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_expire_hours", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")
	v.SetDefault("calendar.timezone", "Local")
	v.SetDefault("collaborator.python", "python3")
	v.SetDefault("collaborator.scripts_dir", "scripts")
	v.SetDefault("collaborator.chat_script", "langchain_response.py")
	v.SetDefault("collaborator.ipv4_script", "ipv4_subnet_calculator.py")
	v.SetDefault("collaborator.ipv6_script", "ipv6_subnet_calculator.py")
	v.SetDefault("collaborator.timeout", 60*time.Second)
	v.SetDefault("collaborator.subnet_timeout", 10*time.Second)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "conversation.logged")
	v.SetDefault("kafka.group_id", "tigersai-indexer")
	v.SetDefault("elasticsearch.addresses", "")
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.index_name", "conversations")
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.bucket_name", "conversation-exports")
	v.SetDefault("minio.url_expiry", 15*time.Minute)
}

// Load 从指定路径读取 YAML 配置，叠加 TIGERSAI_ 前缀的环境变量后返回。
// configPath 为空时只使用默认值与环境变量。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TIGERSAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if cfg.Session.IdleTimeout <= 0 {
		return nil, fmt.Errorf("session.idle_timeout 必须为正数")
	}
	return &cfg, nil
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = *cfg
}
