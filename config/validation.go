package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	Required []string
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {
			Required: []string{"SERVER_PORT", "DB_DRIVER"},
		},
		Test: {
			Required: []string{"SERVER_PORT", "DB_DRIVER"},
		},
		CI: {
			Required: []string{"SERVER_PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_NAME", "DB_PASSWORD", "JWT_SECRET"},
		},
		Production: {
			Required: []string{"SERVER_PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_NAME", "DB_PASSWORD", "JWT_SECRET"},
		},
	}
)

func (c *Config) value(name string) string {
	switch name {
	case "SERVER_PORT":
		return c.ServerPort
	case "DB_DRIVER":
		return c.DBDriver
	case "DB_HOST":
		return c.DBHost
	case "DB_PORT":
		return c.DBPort
	case "DB_USER":
		return c.DBUser
	case "DB_NAME":
		return c.DBName
	case "DB_PASSWORD":
		return c.DBPassword
	case "JWT_SECRET":
		return c.JWTSecret
	}
	return ""
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var errors []string

	for _, name := range reqs.Required {
		if cfg.value(name) == "" {
			errors = append(errors, ValidationError{Field: name, Message: "is required"}.Error())
		}
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		errors = append(errors, ValidationError{Field: "DB_DRIVER", Message: "must be postgres or sqlite"}.Error())
	}
	if env == Production && cfg.DBDriver != "postgres" {
		errors = append(errors, ValidationError{Field: "DB_DRIVER", Message: "production requires postgres"}.Error())
	}
	if cfg.PageSize < 1 {
		errors = append(errors, ValidationError{Field: "PAGE_SIZE", Message: "must be positive"}.Error())
	}
	if cfg.JWTTTL <= 0 {
		errors = append(errors, ValidationError{Field: "JWT_TTL", Message: "must be a positive duration"}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
