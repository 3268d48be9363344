package env

import (
	"fmt"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable in Config.
const Prefix = "HRM_"

type Config struct {
	BaseURL  string `env:"BASE_URL" envDefault:"https://opensource-demo.orangehrmlive.com"`
	Username string `env:"USERNAME" envDefault:"Admin"`
	Password string `env:"PASSWORD" envDefault:"admin123"`
	// FixturesPath overrides the embedded selectors and test data.
	FixturesPath string `env:"FIXTURES"`

	Browser    BrowserConfig    `envPrefix:"BROWSER_"`
	Screenshot ScreenshotConfig `envPrefix:"SCREENSHOT_"`
	Navigation NavigationConfig `envPrefix:"NAVIGATION_"`
	Suite      SuiteConfig      `envPrefix:"SUITE_"`
	Prune      PruneConfig      `envPrefix:"PRUNE_"`
	Log        LogConfig        `envPrefix:"LOG_"`
}

type BrowserConfig struct {
	Headless       bool          `env:"HEADLESS" envDefault:"true"`
	SlowMotion     time.Duration `env:"SLOW_MOTION" envDefault:"500ms"`
	ActionTimeout  time.Duration `env:"ACTION_TIMEOUT" envDefault:"60s"`
	Bin            string        `env:"BIN"`
	DevTools       bool          `env:"DEVTOOLS"`
	Trace          bool          `env:"TRACE"`
	ViewportWidth  int           `env:"VIEWPORT_WIDTH" envDefault:"1280"`
	ViewportHeight int           `env:"VIEWPORT_HEIGHT" envDefault:"720"`
	VideoWidth     int           `env:"VIDEO_WIDTH" envDefault:"640"`
	VideoHeight    int           `env:"VIDEO_HEIGHT" envDefault:"360"`
}

type ScreenshotConfig struct {
	Dir            string        `env:"DIR" envDefault:"screenshots"`
	Retries        int           `env:"RETRIES" envDefault:"3"`
	Delay          time.Duration `env:"DELAY" envDefault:"1s"`
	AttemptTimeout time.Duration `env:"ATTEMPT_TIMEOUT" envDefault:"10s"`
	SampleSize     int           `env:"SAMPLE_SIZE" envDefault:"100"`
	Low            uint8         `env:"LOW" envDefault:"10"`
	High           uint8         `env:"HIGH" envDefault:"245"`
	MinRatio       float64       `env:"MIN_RATIO" envDefault:"0.5"`
}

type NavigationConfig struct {
	Retries      int           `env:"RETRIES" envDefault:"3"`
	Delay        time.Duration `env:"DELAY" envDefault:"5s"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ReadyTimeout time.Duration `env:"READY_TIMEOUT" envDefault:"15s"`
}

type SuiteConfig struct {
	// Grep is a case-insensitive regexp over "<tags> <name>"; empty means
	// every scenario not tagged @mock. TEST_TYPE is honoured as a fallback.
	Grep            string        `env:"GREP"`
	Workers         int           `env:"WORKERS" envDefault:"4"`
	Retries         int           `env:"RETRIES" envDefault:"0"`
	ScenarioTimeout time.Duration `env:"SCENARIO_TIMEOUT" envDefault:"15m"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"2h"`
	ResultsDir      string        `env:"RESULTS_DIR" envDefault:"test-results"`
	Video           bool          `env:"VIDEO" envDefault:"true"`
	CI              bool          `env:"CI"`
}

type PruneConfig struct {
	Root          string   `env:"ROOT" envDefault:"test-results"`
	RetentionDays int      `env:"RETENTION_DAYS" envDefault:"7"`
	Patterns      []string `env:"PATTERNS" envDefault:"video.mjpeg,*.png,dom.html" envSeparator:","`
}

type LogConfig struct {
	Dir     string `env:"DIR" envDefault:"log"`
	Level   string `env:"LEVEL" envDefault:"info"`
	Console bool   `env:"CONSOLE"`
}

// Load parses HRM_* variables and applies the legacy unprefixed TEST_TYPE
// and CI switches read through svc.
func Load(svc output.ConfigPort) (Config, error) {
	return load(svc, env.Options{Prefix: Prefix})
}

func load(svc output.ConfigPort, opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Suite.Grep == "" {
		cfg.Suite.Grep = svc.Get("TEST_TYPE")
	}
	if svc.GetBool("CI", false) {
		cfg.Suite.CI = true
	}
	if cfg.Suite.CI {
		cfg.Suite.Workers = 1
		if cfg.Suite.Retries < 2 {
			cfg.Suite.Retries = 2
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%sBASE_URL is required", Prefix)
	}
	if c.Suite.Workers < 1 {
		return fmt.Errorf("%sSUITE_WORKERS must be at least 1, got %d", Prefix, c.Suite.Workers)
	}
	if c.Browser.VideoWidth < 1 || c.Browser.VideoHeight < 1 {
		return fmt.Errorf("%sBROWSER_VIDEO_WIDTH and %sBROWSER_VIDEO_HEIGHT must be positive", Prefix, Prefix)
	}
	if c.Prune.RetentionDays < 0 {
		return fmt.Errorf("%sPRUNE_RETENTION_DAYS must not be negative, got %d", Prefix, c.Prune.RetentionDays)
	}
	if c.Screenshot.Low >= c.Screenshot.High {
		return fmt.Errorf("%sSCREENSHOT_LOW must be below %sSCREENSHOT_HIGH", Prefix, Prefix)
	}
	if err := c.ScreenshotPolicy().Validate(); err != nil {
		return fmt.Errorf("screenshot policy: %w", err)
	}
	if err := c.NavigationPolicy().Validate(); err != nil {
		return fmt.Errorf("navigation policy: %w", err)
	}
	return nil
}

func (c Config) ScreenshotPolicy() entity.VerificationPolicy {
	return entity.VerificationPolicy{
		MaxRetries:     c.Screenshot.Retries,
		AttemptTimeout: c.Screenshot.AttemptTimeout,
		Delay:          c.Screenshot.Delay,
	}
}

func (c Config) NavigationPolicy() entity.VerificationPolicy {
	return entity.VerificationPolicy{
		MaxRetries:     c.Navigation.Retries,
		AttemptTimeout: c.Navigation.Timeout,
		Delay:          c.Navigation.Delay,
	}
}

func (c Config) Retention() time.Duration {
	return time.Duration(c.Prune.RetentionDays) * 24 * time.Hour
}
