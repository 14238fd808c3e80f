package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateEngines(); err != nil {
		return err
	}
	if err := c.validateEditor(); err != nil {
		return err
	}
	return c.validatePipeline()
}

func (c *Config) validateSource() error {
	if strings.TrimSpace(c.Source.APIHost) == "" {
		return errors.New("source.api_host must be set")
	}
	if c.Source.RequestTimeout <= 0 {
		return errors.New("source.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	if strings.TrimSpace(c.Store.Bucket) == "" {
		return errors.New("store.bucket must be set")
	}
	if c.Store.RequestTimeout <= 0 {
		return errors.New("store.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateEngines() error {
	for name, engine := range map[string]Engine{"engine_a": c.EngineA, "engine_b": c.EngineB} {
		if engine.RequestTimeout <= 0 {
			return fmt.Errorf("%s.request_timeout must be positive", name)
		}
		if strings.TrimSpace(engine.Language) == "" {
			return fmt.Errorf("%s.language must be set", name)
		}
	}
	return nil
}

func (c *Config) validateEditor() error {
	if strings.TrimSpace(c.Editor.BaseURL) == "" {
		return errors.New("editor.base_url must be set")
	}
	if strings.TrimSpace(c.Editor.Model) == "" {
		return errors.New("editor.model must be set")
	}
	if c.Editor.TimeoutSeconds <= 0 {
		return errors.New("editor.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.SegmentSeconds <= 0 {
		return errors.New("pipeline.segment_seconds must be positive")
	}
	if c.Pipeline.MaxAttempts <= 0 {
		return errors.New("pipeline.max_attempts must be positive")
	}
	if c.Pipeline.MaxConcurrentJobs <= 0 {
		return errors.New("pipeline.max_concurrent_jobs must be positive")
	}
	return nil
}
