package config

import (
	"time"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateRecipes(); err != nil {
		return err
	}
	if err := cv.validateEvents(); err != nil {
		return err
	}
	return cv.validateSchedule()
}

func (cv *configurationValidator) validateEvents() error {
	e := cv.config.Events
	switch e.Backoff {
	case "", "fixed", "linear", "exponential":
	default:
		return ferrors.ValidationError("invalid events backoff (want fixed, linear or exponential)").
			WithContext("backoff", e.Backoff).
			Build()
	}
	if e.ConnectRetries < 0 {
		return ferrors.ValidationError("events connect_retries cannot be negative").
			WithContext("connect_retries", e.ConnectRetries).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateRecipes() error {
	for name, rc := range cv.config.Recipes {
		if name == "" {
			return ferrors.ValidationError("recipe name cannot be empty").Build()
		}
		seen := make(map[string]struct{}, len(rc.Steps))
		for i, st := range rc.Steps {
			if st.Command == "" {
				return ferrors.ValidationError("step command is required").
					WithContext("recipe", name).
					WithContext("index", i).
					Build()
			}
			if _, dup := seen[st.Name]; dup {
				return ferrors.ValidationError("duplicate step name").
					WithContext("recipe", name).
					WithContext("step", st.Name).
					Build()
			}
			seen[st.Name] = struct{}{}
		}
	}
	return nil
}

func (cv *configurationValidator) validateSchedule() error {
	s := cv.config.Schedule
	if s.Every == "" {
		return nil
	}
	d, err := time.ParseDuration(s.Every)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid schedule interval").
			WithContext("every", s.Every).
			Fatal().
			Build()
	}
	if d < time.Second {
		return ferrors.ValidationError("schedule interval must be at least 1s").
			WithContext("every", s.Every).
			Build()
	}
	return nil
}

// ScheduleInterval returns the parsed interval, or zero when unset.
func (s ScheduleConfig) ScheduleInterval() time.Duration {
	d, err := time.ParseDuration(s.Every)
	if err != nil {
		return 0
	}
	return d
}
