package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultCDPURL is the remote debugging endpoint used when nothing else is configured
const DefaultCDPURL = "http://127.0.0.1:9222"

// Config represents the application configuration
type Config struct {
	Browser struct {
		CDPURL            string        `yaml:"cdp_url" validate:"required,cdp_url"`
		NavigationTimeout time.Duration `yaml:"navigation_timeout" validate:"gt=0"`
		MainTimeout       time.Duration `yaml:"main_timeout" validate:"gt=0"`
		PostNavSettle     time.Duration `yaml:"post_nav_settle" validate:"gte=0"`
		PostMainSettle    time.Duration `yaml:"post_main_settle" validate:"gte=0"`
		EntrySettle       time.Duration `yaml:"entry_settle" validate:"gte=0"`
		ClickSettle       time.Duration `yaml:"click_settle" validate:"gte=0"`
		UploadSettle      time.Duration `yaml:"upload_settle" validate:"gte=0"`
		ScrollSettle      time.Duration `yaml:"scroll_settle" validate:"gte=0"`
	} `yaml:"browser"`

	Applicant struct {
		FullName   string `yaml:"full_name"`
		Email      string `yaml:"email"`
		Phone      string `yaml:"phone"`
		ResumePath string `yaml:"resume_path"`
	} `yaml:"applicant"`

	Extract struct {
		MinDescriptionLength int `yaml:"min_description_length" validate:"gte=0"`
		ExpandClickLimit     int `yaml:"expand_click_limit" validate:"gte=0"`
		TitleScanWindow      int `yaml:"title_scan_window" validate:"gte=1"`
	} `yaml:"extract"`

	Apply struct {
		StepBudget    int    `yaml:"step_budget" validate:"gte=1"`
		Limit         int    `yaml:"limit" validate:"gte=1"`
		ScreenshotDir string `yaml:"screenshot_dir" validate:"required"`
	} `yaml:"apply"`

	Collect struct {
		MaxPages    int `yaml:"max_pages" validate:"gte=1"`
		MaxJobs     int `yaml:"max_jobs" validate:"gte=1"`
		ScrollTimes int `yaml:"scroll_times" validate:"gte=0"`

		PageTurnSettle time.Duration `yaml:"page_turn_settle" validate:"gte=0"`
	} `yaml:"collect"`

	Pacing struct {
		RequestsPerMinute float64 `yaml:"requests_per_minute" validate:"gte=0"`
	} `yaml:"pacing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

var cdpURLPattern = regexp.MustCompile(`^(https?|wss?)://[^\s/]+`)

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// Default returns a configuration populated with built-in defaults only
func Default() *Config {
	config := &Config{}

	config.Browser.CDPURL = DefaultCDPURL
	config.Browser.NavigationTimeout = 60 * time.Second
	config.Browser.MainTimeout = 30 * time.Second
	config.Browser.PostNavSettle = 1500 * time.Millisecond
	config.Browser.PostMainSettle = 800 * time.Millisecond
	config.Browser.EntrySettle = 1500 * time.Millisecond
	config.Browser.ClickSettle = 1200 * time.Millisecond
	config.Browser.UploadSettle = 1000 * time.Millisecond
	config.Browser.ScrollSettle = 700 * time.Millisecond

	config.Extract.MinDescriptionLength = 50
	config.Extract.ExpandClickLimit = 4
	config.Extract.TitleScanWindow = 5

	config.Apply.StepBudget = 6
	config.Apply.Limit = 5
	config.Apply.ScreenshotDir = "runs/apply_dry_run"

	config.Collect.MaxPages = 10
	config.Collect.MaxJobs = 120
	config.Collect.ScrollTimes = 3
	config.Collect.PageTurnSettle = 2200 * time.Millisecond

	config.Logging.Level = "info"
	config.Logging.Format = "text"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists; real environment variables win
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if cdp := strings.TrimSpace(os.Getenv("PROFILE_CDP")); cdp != "" {
		c.Browser.CDPURL = cdp
	}

	if name := strings.TrimSpace(os.Getenv("FULL_NAME_EN")); name != "" {
		c.Applicant.FullName = name
	}

	if email := strings.TrimSpace(os.Getenv("EMAIL")); email != "" {
		c.Applicant.Email = email
	}

	if phone := strings.TrimSpace(os.Getenv("PHONE")); phone != "" {
		c.Applicant.Phone = phone
	}

	if resume := strings.TrimSpace(os.Getenv("RESUME_PATH")); resume != "" {
		c.Applicant.ResumePath = resume
	}

	if navTimeout := os.Getenv("NAV_TIMEOUT"); navTimeout != "" {
		if d, err := time.ParseDuration(navTimeout); err == nil {
			c.Browser.NavigationTimeout = d
		}
	}

	if minLen := os.Getenv("MIN_DESCRIPTION_LENGTH"); minLen != "" {
		if n, err := strconv.Atoi(minLen); err == nil {
			c.Extract.MinDescriptionLength = n
		}
	}

	if budget := os.Getenv("APPLY_STEP_BUDGET"); budget != "" {
		if n, err := strconv.Atoi(budget); err == nil {
			c.Apply.StepBudget = n
		}
	}

	if dir := os.Getenv("APPLY_SCREENSHOT_DIR"); dir != "" {
		c.Apply.ScreenshotDir = dir
	}

	if rpm := os.Getenv("RATE_LIMIT_PER_MINUTE"); rpm != "" {
		if n, err := strconv.ParseFloat(rpm, 64); err == nil {
			c.Pacing.RequestsPerMinute = n
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
}

// ResolveCDPURL applies a per-invocation endpoint override
func (c *Config) ResolveCDPURL(override string) string {
	if o := strings.TrimSpace(override); o != "" {
		c.Browser.CDPURL = o
	}
	return c.Browser.CDPURL
}

// ResumeAvailable reports whether a configured resume file exists on disk
func (c *Config) ResumeAvailable() bool {
	if c.Applicant.ResumePath == "" {
		return false
	}
	info, err := os.Stat(c.Applicant.ResumePath)
	return err == nil && !info.IsDir()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("cdp_url", func(fl validator.FieldLevel) bool {
		return cdpURLPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the configuration for values the run cannot work with
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validator exposes the shared validator with the custom rules registered
func Validator() *validator.Validate {
	return validate
}
