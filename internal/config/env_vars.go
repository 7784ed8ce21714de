package config

import (
	"os"
	"strconv"
	"time"
)

const (
	appNameVar    = "APP_NAME"
	baseURLVar    = "HRMS_API_URL"
	folderEnvVar  = "HRMS_DATA_FOLDER"
	timeoutMsVar  = "HRMS_REQUEST_TIMEOUT_MS"
	defaultAppURL = "http://localhost:8000"
)

// defaultRequestTimeout bounds every API call issued by the client.
const defaultRequestTimeout = 30 * time.Second

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ APIConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "HRMS Pro Client")
}

func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, defaultAppURL)
}

// GetDataFolder returns the folder holding the persisted session state.
// Defaults to a dot folder under the user's home directory.
func (EnvVars) GetDataFolder() string {
	if folder := GetEnv(folderEnvVar, ""); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hrms"
	}
	return home + string(os.PathSeparator) + ".hrms"
}

func (EnvVars) GetRequestTimeout() time.Duration {
	ms, err := strconv.Atoi(GetEnv(timeoutMsVar, ""))
	if err != nil || ms <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(ms) * time.Millisecond
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetEnv reads an environment variable with a fallback default
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
