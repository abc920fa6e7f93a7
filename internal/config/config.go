package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output          string        `yaml:"output"`
	Format          string        `yaml:"format"`
	Concurrency     int           `yaml:"concurrency"`
	ImageAttempts   int           `yaml:"image_attempts"`
	ChapterAttempts int           `yaml:"chapter_attempts"`
	Backoff         time.Duration `yaml:"backoff"`
	PageTimeout     time.Duration `yaml:"page_timeout"`
	ImageTimeout    time.Duration `yaml:"image_timeout"`
	Strict          bool          `yaml:"strict"`
	KeepFolders     bool          `yaml:"keep_folders"`
	Debug           bool          `yaml:"debug"`
	Lang            string        `yaml:"lang"`

	BaseURL      string `yaml:"base_url"`
	CoverBaseURL string `yaml:"cover_base_url"`
	DefaultURL   string `yaml:"default_url"`
	DefaultRange string `yaml:"default_range"`
	DefaultList  string `yaml:"default_list"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`
	Proxy      string `yaml:"proxy"`
	Cloudflare bool   `yaml:"cloudflare"`
}

// Options carries CLI overrides. Zero values leave the loaded config alone.
type Options struct {
	IgnoreConfig    bool
	Debug           bool
	Output          string
	Format          string
	Concurrency     int
	ImageAttempts   int
	ChapterAttempts int
	Backoff         time.Duration
	PageTimeout     time.Duration
	ImageTimeout    time.Duration
	Strict          bool
	KeepFolders     *bool
	Lang            string
	BaseURL         string
	CoverBaseURL    string
	DefaultURL      string
	DefaultRange    string
	DefaultList     string
	Cookie          string
	CookieFile      string
	UserAgent       string
	Proxy           string
	Cloudflare      bool
}

func DefaultConfig() *Config {
	return &Config{
		Output:          ".",
		Format:          "zip",
		Concurrency:     2,
		ImageAttempts:   3,
		ChapterAttempts: 3,
		Backoff:         time.Second,
		PageTimeout:     10 * time.Second,
		ImageTimeout:    15 * time.Second,
		Strict:          false,
		KeepFolders:     true,
		Debug:           false,
		Lang:            "zh",
		BaseURL:         "https://mxs12.cc",
		CoverBaseURL:    "https://www.wzd1.cc/static/upload/book",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// start from defaults so keys missing from older files keep sane values
	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `mangafetch config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.Concurrency != 0 {
		c.Concurrency = o.Concurrency
	}
	if o.ImageAttempts != 0 {
		c.ImageAttempts = o.ImageAttempts
	}
	if o.ChapterAttempts != 0 {
		c.ChapterAttempts = o.ChapterAttempts
	}
	if o.Backoff != 0 {
		c.Backoff = o.Backoff
	}
	if o.PageTimeout != 0 {
		c.PageTimeout = o.PageTimeout
	}
	if o.ImageTimeout != 0 {
		c.ImageTimeout = o.ImageTimeout
	}
	if o.Strict {
		c.Strict = true
	}
	if o.KeepFolders != nil {
		c.KeepFolders = *o.KeepFolders
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Lang != "" {
		c.Lang = o.Lang
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.CoverBaseURL != "" {
		c.CoverBaseURL = o.CoverBaseURL
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	if o.DefaultRange != "" {
		c.DefaultRange = o.DefaultRange
	}
	if o.DefaultList != "" {
		c.DefaultList = o.DefaultList
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Proxy != "" {
		c.Proxy = o.Proxy
	}
	if o.Cloudflare {
		c.Cloudflare = true
	}
}

func normalizeDefaults(c *Config) {
	def := DefaultConfig()

	if c.Output == "" {
		c.Output = def.Output
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	if c.Concurrency < 1 {
		c.Concurrency = def.Concurrency
	}
	if c.ImageAttempts < 1 {
		c.ImageAttempts = def.ImageAttempts
	}
	if c.ChapterAttempts < 1 {
		c.ChapterAttempts = def.ChapterAttempts
	}
	if c.Backoff <= 0 {
		c.Backoff = def.Backoff
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = def.PageTimeout
	}
	if c.ImageTimeout <= 0 {
		c.ImageTimeout = def.ImageTimeout
	}
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -format: %s\n", c.Format)
	fmt.Printf(" -concurrency: %d\n", c.Concurrency)
	fmt.Printf(" -image_attempts: %d\n", c.ImageAttempts)
	fmt.Printf(" -chapter_attempts: %d\n", c.ChapterAttempts)
	fmt.Printf(" -backoff: %s\n", c.Backoff)
	fmt.Printf(" -page_timeout: %s\n", c.PageTimeout)
	fmt.Printf(" -image_timeout: %s\n", c.ImageTimeout)
	if c.Strict {
		fmt.Printf(" -strict: %t\n", c.Strict)
	}
	fmt.Printf(" -keep_folders: %t\n", c.KeepFolders)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.Lang != "" {
		fmt.Printf(" -lang: %s\n", c.Lang)
	}
	if c.BaseURL != "" {
		fmt.Printf(" -base_url: %s\n", c.BaseURL)
	}
	if c.CoverBaseURL != "" {
		fmt.Printf(" -cover_base_url: %s\n", c.CoverBaseURL)
	}
	if c.DefaultURL != "" {
		fmt.Printf(" -url: %s\n", c.DefaultURL)
	}
	if c.DefaultRange != "" {
		fmt.Printf(" -range: %s\n", c.DefaultRange)
	}
	if c.DefaultList != "" {
		fmt.Printf(" -list: %s\n", c.DefaultList)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.Proxy != "" {
		fmt.Printf(" -proxy: %s\n", c.Proxy)
	}
	if c.Cloudflare {
		fmt.Printf(" -cloudflare: %t\n", c.Cloudflare)
	}
}
