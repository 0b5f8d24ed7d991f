// Package app wires the desk together: config, logger, gateway, session,
// resolver, and the three role dashboards.
package app

import (
	"log/slog"

	"github.com/amirasaad/bankdesk/pkg/config"
	"github.com/amirasaad/bankdesk/pkg/dashboard"
	"github.com/amirasaad/bankdesk/pkg/gateway"
	"github.com/amirasaad/bankdesk/pkg/session"
	"github.com/amirasaad/bankdesk/pkg/visibility"
)

// App holds the assembled components.
type App struct {
	Config   *config.App
	Logger   *slog.Logger
	Gateway  *gateway.Client
	Session  *session.Session
	Resolver *visibility.Resolver
	Customer *dashboard.Customer
	Teller   *dashboard.Teller
	Admin    *dashboard.Admin
}

// New loads config and builds every component.
func New(envFilePath ...string) (*App, error) {
	cfg, err := config.Load(envFilePath...)
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.Log)

	gw := gateway.New(cfg.API, logger)
	resolver := visibility.New(gw, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Gateway:  gw,
		Session:  session.New(gw, logger),
		Resolver: resolver,
		Customer: dashboard.NewCustomer(gw, resolver, logger),
		Teller:   dashboard.NewTeller(gw, resolver, logger),
		Admin:    dashboard.NewAdmin(gw, resolver, logger),
	}, nil
}
