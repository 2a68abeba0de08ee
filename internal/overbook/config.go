package overbook

import (
	"context"
	"fmt"
)

// ConfigUpdate carries the fields an admin may change; nil means keep.
type ConfigUpdate struct {
	Enabled       *bool
	RiskThreshold *Risk
	MaxPerHour    *int
	HoldMinutes   *int
}

// GetConfig returns the singleton policy, creating it with defaults on
// first read.
func (s *Service) GetConfig(ctx context.Context) (*Config, error) {
	cfg, err := s.config.FindOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load overbook config: %w", err)
	}
	return cfg, nil
}

// UpdateConfig applies an admin update. MaxPerHour is floored at 0 and
// HoldMinutes at 5.
func (s *Service) UpdateConfig(ctx context.Context, upd ConfigUpdate) (*Config, error) {
	cfg, err := s.config.FindOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load overbook config: %w", err)
	}

	if upd.Enabled != nil {
		cfg.Enabled = *upd.Enabled
	}
	if upd.RiskThreshold != nil {
		if !ValidRisk(*upd.RiskThreshold) {
			return nil, ErrInvalidRiskThreshold
		}
		cfg.RiskThreshold = *upd.RiskThreshold
	}
	if upd.MaxPerHour != nil {
		cfg.MaxPerHour = *upd.MaxPerHour
		if cfg.MaxPerHour < 0 {
			cfg.MaxPerHour = 0
		}
	}
	if upd.HoldMinutes != nil {
		cfg.HoldMinutes = *upd.HoldMinutes
		if cfg.HoldMinutes < 5 {
			cfg.HoldMinutes = 5
		}
	}

	if err := s.config.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save overbook config: %w", err)
	}

	return cfg, nil
}
