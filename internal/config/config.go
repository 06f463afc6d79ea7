package config

import "time"

type Config interface {
	EnvConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBotToken() string
	GetAezaAPIURL() string
	GetEmailAPIURL() string
	GetHTTPTimeout() time.Duration
	GetOpsAddr() string
	GetLogLevel() string
	GetLogPretty() bool
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
