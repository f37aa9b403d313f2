package initializers

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AlertsConfig holds the SOS channel credentials and the trusted-contact
// roster. The roster is fixed for the process lifetime.
type AlertsConfig struct {
	AccountSID  string
	AuthToken   string
	From        string
	Roster      []string
	SendTimeout time.Duration
}

// Ready reports whether the channel can be used at all. An unready config is
// not a boot failure; the SOS endpoint reports it per request instead.
func (c AlertsConfig) Ready() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != "" && len(c.Roster) > 0
}

// alertsConfigYAML is the optional on-disk override for roster and timeout.
// Credentials stay in the environment only.
type alertsConfigYAML struct {
	Roster      []string `yaml:"roster"`
	SendTimeout int      `yaml:"send_timeout"` // seconds
}

func loadAlertsYAML() (*alertsConfigYAML, error) {
	path := os.Getenv("ALERTS_CONFIG_FILE")
	if strings.TrimSpace(path) == "" {
		path = "config/alerts.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg alertsConfigYAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadAlertsConfig reads the alert channel configuration from the
// environment, then applies the YAML override file when present.
func LoadAlertsConfig() AlertsConfig {
	cfg := AlertsConfig{
		AccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		AuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		From:        os.Getenv("TWILIO_FROM_NUMBER"),
		Roster:      splitRoster(os.Getenv("SOS_ROSTER")),
		SendTimeout: parseSeconds(os.Getenv("SOS_SEND_TIMEOUT"), 15*time.Second),
	}

	if yamlCfg, err := loadAlertsYAML(); err == nil && yamlCfg != nil {
		if len(yamlCfg.Roster) > 0 {
			cfg.Roster = yamlCfg.Roster
		}
		if yamlCfg.SendTimeout > 0 {
			cfg.SendTimeout = time.Duration(yamlCfg.SendTimeout) * time.Second
		}
	}
	return cfg
}

func splitRoster(raw string) []string {
	var roster []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			roster = append(roster, p)
		}
	}
	return roster
}

func parseSeconds(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}
