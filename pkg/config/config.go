package config

import "time"

// API holds the connection settings for the banking backend.
type API struct {
	BaseURL     string        `envconfig:"BASE_URL" default:"http://localhost:8080/api"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

// Log holds the logger settings.
type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	Prefix     string `envconfig:"PREFIX" default:"bankdesk"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"15:04:05"`
}

// App is the root configuration, populated from BANKDESK_* environment
// variables.
type App struct {
	Env string `envconfig:"ENV" default:"development"`
	API API    `envconfig:"API"`
	Log Log    `envconfig:"LOG"`
}
