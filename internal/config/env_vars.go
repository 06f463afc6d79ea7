package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	botTokenEnvVar    = "BOT_TOKEN"
	aezaAPIEnvVar     = "AEZA_API_URL"
	emailAPIEnvVar    = "EMAIL_API_URL"
	httpTimeoutEnvVar = "HTTP_TIMEOUT_SECONDS"
	opsAddrEnvVar     = "OPS_ADDR"
	appNameEnvVar     = "APP_NAME"
	logLevelEnvVar    = "LOG_LEVEL"
	logPrettyEnvVar   = "LOG_PRETTY"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameEnvVar, "VLESS Bot")
}

func (EnvVars) GetBotToken() string {
	return GetEnv(botTokenEnvVar, "")
}

func (EnvVars) GetAezaAPIURL() string {
	return GetEnv(aezaAPIEnvVar, "https://api.aeza-security.net/v2")
}

func (EnvVars) GetEmailAPIURL() string {
	return GetEnv(emailAPIEnvVar, "https://api.internal.temp-mail.io/api/v3/email")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(httpTimeoutEnvVar, "15"))
	if err != nil || seconds <= 0 {
		seconds = 15
	}
	return time.Duration(seconds) * time.Second
}

func (EnvVars) GetOpsAddr() string {
	addr := GetEnv(opsAddrEnvVar, ":8080")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return addr
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

func (EnvVars) GetLogPretty() bool {
	pretty, err := strconv.ParseBool(GetEnv(logPrettyEnvVar, "false"))
	if err != nil {
		return false
	}
	return pretty
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
