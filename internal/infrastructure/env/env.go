package env

import (
	"fmt"
	"os"
	"strconv"

	"hrm-e2e/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService exposes the process environment after .env files are applied.
// Loaded and Skipped record which files were read so the caller can log them
// once a logger exists.
type EnvService struct {
	AppEnv  string
	Loaded  []string
	Skipped map[string]error
}

// NewEnvService loads .env (secrets, optional) and then .env.$APP_ENV, which
// overrides it. Variables already set in the process win over .env but not
// over .env.$APP_ENV.
func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	svc := &EnvService{AppEnv: appEnv, Skipped: map[string]error{}}

	if err := godotenv.Load(".env"); err != nil {
		svc.Skipped[".env"] = err
	} else {
		svc.Loaded = append(svc.Loaded, ".env")
	}

	envFile := fmt.Sprintf(".env.%s", appEnv)
	if err := godotenv.Overload(envFile); err != nil {
		svc.Skipped[envFile] = err
	} else {
		svc.Loaded = append(svc.Loaded, envFile)
	}

	return svc
}

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

func (e *EnvService) MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("ENV %s is missing", key))
	}
	return val
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
