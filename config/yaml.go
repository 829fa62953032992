package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type yamlConfig struct {
	PageOrigin     string            `yaml:"pageOrigin"`
	TokenMetaName  string            `yaml:"tokenMetaName"`
	HeaderMetaName string            `yaml:"headerMetaName"`
	RequestTimeout string            `yaml:"requestTimeout"` // e.g. "20s"
	UserAgent      string            `yaml:"userAgent"`
	ExtraHeaders   map[string]string `yaml:"extraHeaders"`
}

// NewConfigFromYaml decodes, defaults and validates a service config.
func NewConfigFromYaml(yamlBytes []byte) (*NetSvcConfig, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(yamlBytes, &raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg := DefaultNetSvcConfig()
	if err := applyYaml(&cfg, &raw); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyYaml(cfg *NetSvcConfig, raw *yamlConfig) error {
	cfg.PageOrigin = strings.TrimSpace(raw.PageOrigin)
	if v := strings.TrimSpace(raw.TokenMetaName); v != "" {
		cfg.TokenMetaName = v
	}
	if v := strings.TrimSpace(raw.HeaderMetaName); v != "" {
		cfg.HeaderMetaName = v
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid requestTimeout '%s': %w", raw.RequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.UserAgent); v != "" {
		cfg.UserAgent = v
	}
	for k, v := range raw.ExtraHeaders {
		cfg.ExtraHeaders[k] = v
	}
	return nil
}
