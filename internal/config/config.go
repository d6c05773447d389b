package config

import (
	"fmt"
	"time"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// ServerConfig represents the server configuration
type ServerConfig struct {
	Server ServerSettings `yaml:"server"`
	Roles  RolesConfig    `yaml:"roles"`
}

// ServerSettings contains server-wide settings
type ServerSettings struct {
	MaxPlayers        int           `yaml:"maxPlayers"`
	MinPlayers        int           `yaml:"minPlayers"`
	SessionCodeLength int           `yaml:"sessionCodeLength"`
	SessionTimeout    time.Duration `yaml:"sessionTimeout"`
	MaxSessions       int           `yaml:"maxSessions"`

	// Server settings
	Port            string        `yaml:"port" envconfig:"PORT" required:"true"`
	Host            string        `yaml:"host" envconfig:"HOST" required:"true"`
	ReadTimeout     time.Duration `yaml:"readTimeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" envconfig:"WRITE_TIMEOUT"` // 0 for SSE support
	IdleTimeout     time.Duration `yaml:"idleTimeout" envconfig:"IDLE_TIMEOUT"`   // 0 for SSE support
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"` // Timeout for regular HTTP requests (middleware)
	SSETimeout      time.Duration `yaml:"sseTimeout"`     // Timeout for SSE connections (0 = no timeout)

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit" envconfig:"RATE_LIMIT"`             // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst" envconfig:"RATE_LIMIT_BURST"` // burst size

	// Request limits
	MaxRequestSize    int64 `yaml:"maxRequestSize" envconfig:"MAX_REQUEST_SIZE"`
	MaxSSEConnections int   `yaml:"maxSSEConnections" envconfig:"MAX_SSE_CONNECTIONS"`

	LogLevel  string `yaml:"logLevel" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"logFormat" envconfig:"LOG_FORMAT"`
}

// RolesConfig contains the role catalog. The whole game is data-driven
// from here: adding a role to the config file adds it to setup, validation
// and assignment with no code change.
type RolesConfig struct {
	Available map[string]RoleDefinition `yaml:"available"`
}

// RoleDefinition defines a single role type
type RoleDefinition struct {
	DisplayName  string      `yaml:"displayName"`
	Team         string      `yaml:"team"`
	Description  string      `yaml:"description"`
	Color        ColorConfig `yaml:"color"`
	MinCount     int         `yaml:"minCount"`
	MaxCount     int         `yaml:"maxCount"` // <= 0 means no cap below the player total
	DefaultCount int         `yaml:"defaultCount"`
	DisplayOrder int         `yaml:"displayOrder"`
	CatchAll     bool        `yaml:"catchAll"` // the one role dealt to every otherwise-unassigned player
}

// ColorConfig carries the presentation colors for a role card
type ColorConfig struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
	Text      string `yaml:"text"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			MaxPlayers:        100,
			MinPlayers:        1,
			SessionCodeLength: 5,
			SessionTimeout:    24 * time.Hour,
			MaxSessions:       500,

			// Server defaults
			Port:            "", // Must be set via env
			Host:            "", // Must be set via env
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // 0 for SSE support
			IdleTimeout:     0, // 0 for SSE support
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
			SSETimeout:      24 * time.Hour,

			// Rate limiting defaults
			RateLimit:      10, // 10 requests per second
			RateLimitBurst: 20,

			// Request limits
			MaxRequestSize:    1048576, // 1MB
			MaxSSEConnections: 1000,

			LogLevel:  "info",
			LogFormat: "text",
		},
		Roles: RolesConfig{
			Available: map[string]RoleDefinition{
				"mafia": {
					DisplayName: "Mafia",
					Team:        "mafia",
					Description: "Knows the other mafia. Eliminates one player each night and wins when the mafia reach parity.",
					Color: ColorConfig{
						Primary:   "#7f1d1d",
						Secondary: "#fecaca",
						Text:      "#fff1f2",
					},
					MinCount:     0,
					MaxCount:     0,
					DefaultCount: 2,
					DisplayOrder: 1,
				},
				"police": {
					DisplayName: "Police",
					Team:        "village",
					Description: "Each night, investigates one player and learns which team they are on.",
					Color: ColorConfig{
						Primary:   "#1e3a8a",
						Secondary: "#bfdbfe",
						Text:      "#eff6ff",
					},
					MinCount:     0,
					MaxCount:     0,
					DefaultCount: 1,
					DisplayOrder: 2,
				},
				"doctor": {
					DisplayName: "Doctor",
					Team:        "village",
					Description: "Each night, protects one player from elimination.",
					Color: ColorConfig{
						Primary:   "#14532d",
						Secondary: "#bbf7d0",
						Text:      "#f0fdf4",
					},
					MinCount:     0,
					MaxCount:     0,
					DefaultCount: 1,
					DisplayOrder: 3,
				},
				"villager": {
					DisplayName: "Villager",
					Team:        "village",
					Description: "Holds no night ability. Wins by rooting out the mafia before they take over.",
					Color: ColorConfig{
						Primary:   "#44403c",
						Secondary: "#e7e5e4",
						Text:      "#fafaf9",
					},
					MinCount:     0,
					MaxCount:     0,
					DefaultCount: 0,
					DisplayOrder: 4,
					CatchAll:     true,
				},
			},
		},
	}
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	// Required fields
	if c.Server.Port == "" {
		return fmt.Errorf("PORT environment variable must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST environment variable must be set")
	}

	if c.Server.MaxPlayers < 1 {
		return fmt.Errorf("maxPlayers must be at least 1")
	}
	if c.Server.MinPlayers < 1 {
		return fmt.Errorf("minPlayers must be at least 1")
	}
	if c.Server.MinPlayers > c.Server.MaxPlayers {
		return fmt.Errorf("minPlayers cannot be greater than maxPlayers")
	}
	if c.Server.SessionCodeLength < 3 {
		return fmt.Errorf("sessionCodeLength must be at least 3")
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("maxSessions must be at least 1")
	}

	// Validate the role catalog
	if len(c.Roles.Available) == 0 {
		return fmt.Errorf("at least one role must be defined")
	}
	catchAllCount := 0
	for name, role := range c.Roles.Available {
		if role.DisplayName == "" {
			return fmt.Errorf("role %s: displayName is required", name)
		}
		if role.MinCount < 0 {
			return fmt.Errorf("role %s: minCount cannot be negative", name)
		}
		if role.MaxCount > 0 && role.MinCount > role.MaxCount {
			return fmt.Errorf("role %s: minCount cannot be greater than maxCount", name)
		}
		if role.DefaultCount < role.MinCount {
			return fmt.Errorf("role %s: defaultCount cannot be below minCount", name)
		}
		if role.MaxCount > 0 && role.DefaultCount > role.MaxCount {
			return fmt.Errorf("role %s: defaultCount cannot exceed maxCount", name)
		}
		if role.CatchAll {
			catchAllCount++
		}
	}
	if catchAllCount != 1 {
		return fmt.Errorf("exactly one role must be marked catchAll, found %d", catchAllCount)
	}

	return nil
}

// GetRoleDefinition returns a role definition by name
func (c *ServerConfig) GetRoleDefinition(name string) (*RoleDefinition, bool) {
	role, exists := c.Roles.Available[name]
	if !exists {
		return nil, false
	}
	return &role, true
}
