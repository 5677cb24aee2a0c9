// 包 config 负责加载与校验应用配置（settings.yaml），
// 对外提供结构体 Config 及默认值/合法性校验。
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 仅保留镜像流程需要的字段，避免过度设计（KISS/YAGNI）。
type Config struct {
	BaseURL         string   `yaml:"BASE_URL"`
	RootFolders     []string `yaml:"ROOT_FOLDERS"`
	OutputDir       string   `yaml:"OUTPUT_DIR"`
	DownloadDelayMS int      `yaml:"DOWNLOAD_DELAY_MS"`
	RetryDelayMS    int      `yaml:"RETRY_DELAY_MS"`
	MaxRetries      int      `yaml:"MAX_RETRIES"`
	TimeoutSeconds  int      `yaml:"REQUEST_TIMEOUT_SECONDS"`
	SimpleMode      bool     `yaml:"SIMPLE_MODE"`
	ResetOnStart    bool     `yaml:"RESET_ON_START"`
	Database        Database `yaml:"DATABASE"`
	Proxy           Proxy    `yaml:"PROXY"`
	Discover        Discover `yaml:"DISCOVER"`
	LogLevel        string   `yaml:"LOG_LEVEL"`
	LogFormat       string   `yaml:"LOG_FORMAT"` // text|json|pretty
	LogLocale       string   `yaml:"LOG_LOCALE"` // zh-CN|en
	LogColor        string   `yaml:"LOG_COLOR"`  // auto|always|never
}

type Database struct {
	Type string `yaml:"type"` // sqlite (default)
	DSN  string `yaml:"dsn"`  // ./mirror.db
}

type Proxy struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

// Discover 为分类页发现模式（-discover）的来源配置：
// URL 为门户分类页地址，Theme 对应 rules.yaml 中的预设名。
type Discover struct {
	URL   string `yaml:"url"`
	Theme string `yaml:"theme"`
}

func Load(path string) (*Config, error) {
	// Load 从文件读取 YAML 并反序列化为 Config，同时进行基础校验与默认值填充。
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	// Validate 负责合法性检查与默认值设置，避免在业务层分散判空逻辑。
	if c.BaseURL == "" {
		c.BaseURL = "https://adala.justice.gov.ma"
	}
	if len(c.RootFolders) == 0 {
		// 门户的两个法规资源根分类
		c.RootFolders = []string{"12", "569"}
	}
	if c.OutputDir == "" {
		c.OutputDir = "./laws"
	}
	if c.DownloadDelayMS < 0 {
		return errors.New("DOWNLOAD_DELAY_MS must be >= 0")
	}
	if c.DownloadDelayMS == 0 {
		c.DownloadDelayMS = 500
	}
	if c.RetryDelayMS < 0 {
		return errors.New("RETRY_DELAY_MS must be >= 0")
	}
	if c.RetryDelayMS == 0 {
		c.RetryDelayMS = 2000
	}
	if c.MaxRetries < 0 {
		return errors.New("MAX_RETRIES must be >= 0")
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.TimeoutSeconds < 0 {
		return errors.New("REQUEST_TIMEOUT_SECONDS must be >= 0")
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 60
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type != "sqlite" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "./mirror.db"
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogLocale == "" {
		c.LogLocale = "zh-CN"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	// ResetOnStart 默认为 false，显式开启时才清理清单库
	return nil
}

// DownloadDelay 返回下载间隔（礼貌性暂停）。
func (c *Config) DownloadDelay() time.Duration {
	return time.Duration(c.DownloadDelayMS) * time.Millisecond
}

// RetryDelay 返回重试间隔。
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// Timeout 返回单请求超时。
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
