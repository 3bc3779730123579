package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 存储驱动
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// EnvPrefix 环境变量前缀,如READINGTRACKER_MONGO_URI → mongo.uri
const EnvPrefix = "READINGTRACKER"

const defaultSecret = "change-me-in-production"

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、.env文件、环境变量覆盖
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	MySQL     DatabaseConfig  `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	View      ViewConfig      `mapstructure:"view"`
	MQ        MQConfig        `mapstructure:"mq"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// TrustedProxies 只采信这些地址发来的X-Forwarded-For(IP或CIDR)
	// 页面经view.base_url回调API,服务自身的出口地址必须在列表中
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// StorageConfig 选择图书仓储实现
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // mongo | mysql | memory
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

// RedisConfig 会话吊销列表所用的Redis
// Enabled=false时登出只清除Cookie,不记录吊销
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig 外部身份提供方签发的会话令牌
type AuthConfig struct {
	Secret        string        `mapstructure:"secret"`
	Issuer        string        `mapstructure:"issuer"`
	SessionExpire time.Duration `mapstructure:"session_expire"`
	CookieName    string        `mapstructure:"cookie_name"`
	SignInURL     string        `mapstructure:"sign_in_url"`
	SecureCookie  bool          `mapstructure:"secure_cookie"`
}

// ViewConfig 服务端渲染页面
type ViewConfig struct {
	BaseURL                         string        `mapstructure:"base_url"`
	DegradeToEmptyOnUpstreamFailure bool          `mapstructure:"degrade_to_empty_on_upstream_failure"`
	RequestTimeout                  time.Duration `mapstructure:"request_timeout"`
}

// MQConfig 图书事件发布,URL为空时不发布
type MQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// Enabled 是否配置了消息队列
func (m MQConfig) Enabled() bool {
	return m.URL != ""
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// Load 加载配置
// 优先级(高→低)：环境变量 > .env文件 > 配置文件 > 默认值
// 1. configFile为空时在./config和.下查找config.yaml,找不到文件不算错误
// 2. .env文件中的变量只在进程环境未设置时生效
func Load(configFile string) (*Config, error) {
	// .env可选,只有存在但无法解析时才报错
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取.env失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 环境变量绑定(mongo.uri → READINGTRACKER_MONGO_URI)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 每个键都需要默认值,AutomaticEnv才能在Unmarshal时覆盖
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 20*time.Second)
	v.SetDefault("server.trusted_proxies", []string{"127.0.0.1", "::1"})

	v.SetDefault("storage.driver", DriverMongo)

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "booksDb")
	v.SetDefault("mongo.collection", "books")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)
	v.SetDefault("mongo.max_pool_size", 100)

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.dbname", "reading_tracker")
	v.SetDefault("mysql.charset", "utf8mb4")
	v.SetDefault("mysql.parse_time", true)
	v.SetDefault("mysql.loc", "Local")
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("auth.secret", defaultSecret)
	v.SetDefault("auth.issuer", "reading-tracker")
	v.SetDefault("auth.session_expire", 7*24*time.Hour)
	v.SetDefault("auth.cookie_name", "__session")
	v.SetDefault("auth.sign_in_url", "")
	v.SetDefault("auth.secure_cookie", false)

	v.SetDefault("view.base_url", "http://localhost:8080")
	v.SetDefault("view.degrade_to_empty_on_upstream_failure", true)
	v.SetDefault("view.request_timeout", 5*time.Second)

	v.SetDefault("mq.url", "")
	v.SetDefault("mq.exchange", "reading-tracker.books")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "reading-tracker")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.enable_caller", false)
}

// validate 配置校验,失败即启动失败
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	for _, p := range cfg.Server.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("无效的server.trusted_proxies: %q", p)
			}
		}
	}

	switch cfg.Storage.Driver {
	case DriverMongo:
		if cfg.Mongo.URI == "" {
			return fmt.Errorf("未配置mongo.uri(环境变量%s_MONGO_URI)", EnvPrefix)
		}
	case DriverMySQL:
		if cfg.MySQL.Host == "" || cfg.MySQL.DBName == "" {
			return fmt.Errorf("未配置mysql.host或mysql.dbname")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("未知的存储驱动: %q", cfg.Storage.Driver)
	}

	if cfg.View.BaseURL == "" {
		return fmt.Errorf("未配置view.base_url")
	}
	if _, err := url.ParseRequestURI(cfg.View.BaseURL); err != nil {
		return fmt.Errorf("无效的view.base_url: %w", err)
	}

	if cfg.Auth.Secret == "" {
		return fmt.Errorf("未配置auth.secret")
	}
	if cfg.Auth.Secret == defaultSecret && cfg.Server.Mode == "release" {
		return fmt.Errorf("生产环境必须修改会话密钥")
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0) {
		return fmt.Errorf("限流参数无效: rps=%v burst=%d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	return nil
}
