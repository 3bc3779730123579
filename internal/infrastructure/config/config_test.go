package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("READINGTRACKER_STORAGE_DRIVER", "memory")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"127.0.0.1", "::1"}, cfg.Server.TrustedProxies, "默认只信任本机")
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "booksDb", cfg.Mongo.Database)
	assert.Equal(t, "books", cfg.Mongo.Collection)
	assert.Equal(t, "__session", cfg.Auth.CookieName)
	assert.True(t, cfg.View.DegradeToEmptyOnUpstreamFailure, "默认降级为空列表")
	assert.False(t, cfg.MQ.Enabled())
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_MongoURIRequired(t *testing.T) {
	t.Setenv("READINGTRACKER_MONGO_URI", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo.uri")
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  driver: mongo
mongo:
  uri: mongodb://file-host:27017
  database: shelf
view:
  base_url: http://tracker.local
  degrade_to_empty_on_upstream_failure: false
`)
	t.Setenv("READINGTRACKER_MONGO_URI", "mongodb://env-host:27017")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mongodb://env-host:27017", cfg.Mongo.URI, "环境变量优先于配置文件")
	assert.Equal(t, "shelf", cfg.Mongo.Database)
	assert.Equal(t, "books", cfg.Mongo.Collection, "未配置的键使用默认值")
	assert.Equal(t, "http://tracker.local", cfg.View.BaseURL)
	assert.False(t, cfg.View.DegradeToEmptyOnUpstreamFailure)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: 8080, Mode: "debug"},
			Storage:   StorageConfig{Driver: DriverMemory},
			Auth:      AuthConfig{Secret: "s3cret"},
			View:      ViewConfig{BaseURL: "http://localhost:8080"},
			RateLimit: RateLimitConfig{Enabled: true, RPS: 1, Burst: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "有效配置", mutate: func(*Config) {}},
		{name: "端口越界", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "端口"},
		{name: "未知驱动", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: "存储驱动"},
		{name: "mysql缺少库名", mutate: func(c *Config) {
			c.Storage.Driver = DriverMySQL
			c.MySQL.Host = "db"
		}, wantErr: "mysql"},
		{name: "缺少base_url", mutate: func(c *Config) { c.View.BaseURL = "" }, wantErr: "view.base_url"},
		{name: "缺少密钥", mutate: func(c *Config) { c.Auth.Secret = "" }, wantErr: "auth.secret"},
		{name: "生产环境默认密钥", mutate: func(c *Config) {
			c.Server.Mode = "release"
			c.Auth.Secret = defaultSecret
		}, wantErr: "密钥"},
		{name: "可信代理格式错误", mutate: func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"} }, wantErr: "trusted_proxies"},
		{name: "可信代理为IP和CIDR", mutate: func(c *Config) { c.Server.TrustedProxies = []string{"127.0.0.1", "10.0.0.0/8", "::1"} }},
		{name: "限流参数无效", mutate: func(c *Config) { c.RateLimit.RPS = 0 }, wantErr: "限流"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "127.0.0.1", Port: 3306, User: "root", Password: "pw",
		DBName: "reading_tracker", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t,
		"root:pw@tcp(127.0.0.1:3306)/reading_tracker?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai",
		d.DSN())
}
