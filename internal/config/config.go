package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
