package config

import (
	"os"
	"path"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	ListenAddr    string `yaml:"listen_addr"`
	APIBaseURL    string `yaml:"api_base_url"`
	ChallengeURL  string `yaml:"challenge_url"` // bot-verification provider endpoint
	LoginURL      string `yaml:"login_url"`     // external auth page for unauthenticated posters
	DefaultGroup  string `yaml:"default_group"`
	LogLevel      string `yaml:"log_level"`
	LogJSON       bool   `yaml:"log_json"`
	SecureCookies bool   `yaml:"secure_cookies"`

	TopicTitleMaxLen int `yaml:"topic_title_max_len"`
	TopicTextMaxLen  int `yaml:"topic_text_max_len"`
}

type Private struct {
	JwtKey          string `yaml:"jwt_key"`
	ChallengeSecret string `yaml:"challenge_secret"`
}

func (c *Config) JwtKey() string {
	return c.private.JwtKey
}

func (c *Config) ChallengeSecret() string {
	return c.private.ChallengeSecret
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
