package cfg

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
)

// Config adds app-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	StoreURL              string
	RefreshSeconds        int
	Department            string
	ClaudeAPIKey          string
	ClaudeModel           string
	SlackWebhookURL       string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.StoreURL, "store-url", "", "base URL of the patient record and scoring backend")
	fs.IntVar(&c.RefreshSeconds, "refresh-seconds", 5, "queue refresh interval in seconds (1..300)")
	fs.StringVar(&c.Department, "department", "Emergency", "department queue selected at startup")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for direct Claude explanations (empty = use the backend explain endpoint)")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model for direct explanations")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for high risk arrival notifications")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Every read and write goes through the backend, so its URL is required
	if c.StoreURL == "" {
		errs = append(errs, errors.New("STORE_URL is required"))
	} else if u, err := url.Parse(c.StoreURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid STORE_URL %q (must be an absolute http(s) URL)", c.StoreURL))
	}

	if c.RefreshSeconds <= 0 || c.RefreshSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid REFRESH_SECONDS %d (must be 1..300)", c.RefreshSeconds))
	}

	if c.Department == "" {
		errs = append(errs, errors.New("DEPARTMENT must not be empty"))
	}

	// Model only matters when direct Claude explanations are enabled
	if c.ClaudeAPIKey != "" && c.ClaudeModel == "" {
		errs = append(errs, errors.New("CLAUDE_MODEL is required when CLAUDE_API_KEY is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
