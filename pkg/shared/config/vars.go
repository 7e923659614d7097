package config

import (
	"time"
)

type Config struct {
	Logger     Logger     `yaml:"logger"`
	Scanner    Scanner    `yaml:"scanner"`
	Verdict    Verdict    `yaml:"verdict"`
	HttpClient HttpClient `yaml:"http_client"`
}

type Logger struct {
	Level string `yaml:"level"`
}

// Scanner holds settings for the compliance scanner itself.
type Scanner struct {
	Threads    int      `yaml:"threads"`
	RulesPath  string   `yaml:"rules"`
	Extensions []string `yaml:"extensions"`
}

// Verdict holds the thresholds used when deriving a verdict from severity counts.
type Verdict struct {
	HighThreshold int `yaml:"high_threshold"`
}

type HttpClient struct {
	Debug            bool            `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TlsClientConfig  TlsClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TlsClientConfig struct {
	Verify bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}
