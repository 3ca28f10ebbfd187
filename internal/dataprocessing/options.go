package dataprocessing

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"crvx/internal/config"
)

// Options is the configuration surface of the preprocessing core
type Options struct {
	// Seed initialises the generator used for split grade labels.
	Seed int64
	// DropBeginner removes the "VB" band after grade resolution.
	DropBeginner bool
	// TopK lists the K values for top-K monthly means.
	TopK []int `validate:"min=1,unique,dive,gt=0"`
}

// DefaultOptions returns default processing options
func DefaultOptions() Options {
	return Options{
		Seed:         config.DefaultSeed,
		DropBeginner: config.DefaultDropBeginner,
		TopK:         append([]int(nil), config.DefaultTopK...),
	}
}

// OptionsFromConfig maps the pipeline section of the configuration
func OptionsFromConfig(cfg config.PipelineConfig) Options {
	return Options{
		Seed:         cfg.Seed,
		DropBeginner: cfg.DropBeginner,
		TopK:         append([]int(nil), cfg.TopK...),
	}
}

// Validate checks the options against their struct tags
func (o Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return fmt.Errorf("invalid pipeline options: %w", err)
	}
	return nil
}
