package config

import (
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	App        AppConfig                 `json:"app"`
	Gateways   map[string]GatewayConfig  `json:"gateways"`
	Providers  map[string]ProviderConfig `json:"providers"`
	Memory     MemoryConfig              `json:"memory"`
	Governance GovernanceConfig          `json:"governance"`
}

type AppConfig struct {
	Name      string `json:"name"`
	Workspace string `json:"workspace"`
}

type GatewayConfig struct {
	Token   string `json:"token"`
	Enabled bool   `json:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type GovernanceConfig struct {
	PolicyPath string `json:"policy_path"`
}

func LoadConfig(path string) *Config {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}

	// Secrets may reference environment variables, e.g. "${OPENAI_API_KEY}".
	for name, p := range cfg.Providers {
		p.APIKey = os.ExpandEnv(p.APIKey)
		cfg.Providers[name] = p
	}
	for name, g := range cfg.Gateways {
		g.Token = os.ExpandEnv(g.Token)
		cfg.Gateways[name] = g
	}

	return &cfg
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetGateway returns a gateway config if enabled
func (c *Config) GetGateway(name string) (GatewayConfig, bool) {
	g, ok := c.Gateways[name]
	if ok && g.Enabled {
		return g, true
	}
	return GatewayConfig{}, false
}
