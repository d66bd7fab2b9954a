package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures required fields are present.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Depth < 0 {
		return errors.New("depth must be >= 0")
	}
	if cfg.MergeIntervalMs <= 0 {
		return errors.New("mergeIntervalMs must be > 0")
	}
	q := cfg.Execution.Quantity
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
		return errors.New("execution.quantity must be a finite number >= 0")
	}
	if err := validateVenue("coinbase", cfg.Venues.Coinbase); err != nil {
		return err
	}
	if err := validateVenue("gemini", cfg.Venues.Gemini); err != nil {
		return err
	}
	return nil
}

func validateVenue(name string, v VenueConfig) error {
	if v.BaseURL == "" {
		return fmt.Errorf("venues.%s.baseURL is required", name)
	}
	if v.Instrument == "" {
		return fmt.Errorf("venues.%s.instrument is required", name)
	}
	if v.BookLevel < 0 {
		return fmt.Errorf("venues.%s.bookLevel must be >= 0", name)
	}
	if v.MinIntervalMs < 0 {
		return fmt.Errorf("venues.%s.minIntervalMs must be >= 0", name)
	}
	if v.PollIntervalMs <= 0 {
		return fmt.Errorf("venues.%s.pollIntervalMs must be > 0", name)
	}
	if v.TimeoutMs <= 0 {
		return fmt.Errorf("venues.%s.timeoutMs must be > 0", name)
	}
	return nil
}
