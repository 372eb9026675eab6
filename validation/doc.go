// Package validation validates driver and server configuration.
//
// Struct tag validation (go-playground/validator) reports fields by their
// mapstructure key, so messages read like the config file:
//
//	type Config struct {
//	    Root string `mapstructure:"root" validate:"required"`
//	}
//	err := validation.Validate(cfg) // "root: is required"
//
// The programmatic Validator covers cross-field rules tags cannot express:
//
//	v := validation.New()
//	v.Pair("key", cfg.Key, "secret", cfg.Secret)
//	err := v.Validate()
//
// Both return an INVALID_CONFIG AppError carrying per-field details.
package validation
