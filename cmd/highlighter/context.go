package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/RaufunNazin/Highlighter/internal/auth"
	"github.com/RaufunNazin/Highlighter/internal/config"
	"github.com/RaufunNazin/Highlighter/internal/db"
	"github.com/RaufunNazin/Highlighter/internal/gateway"
	"github.com/RaufunNazin/Highlighter/internal/logging"
	"github.com/RaufunNazin/Highlighter/internal/runs"
	"github.com/RaufunNazin/Highlighter/internal/session"
)

// commandContext lazily wires the shared dependencies. Commands call ensure()
// so flag parsing and help never pay for config or database setup.
type commandContext struct {
	configFlag   *string
	apiURLFlag   *string
	dataDirFlag  *string
	logLevelFlag *string

	cfg      *config.Config
	logger   *slog.Logger
	database *db.DB
	store    *session.Store
	journal  *runs.Repository
	gw       *gateway.Client
	flow     *auth.Flow
}

func newCommandContext(configFlag, apiURLFlag, dataDirFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		apiURLFlag:   apiURLFlag,
		dataDirFlag:  dataDirFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensure() error {
	if c.cfg != nil {
		return nil
	}

	cfg, err := config.Load(*c.configFlag)
	if err != nil {
		return err
	}
	if *c.apiURLFlag != "" {
		cfg.APIBaseURL = *c.apiURLFlag
	}
	if *c.dataDirFlag != "" {
		cfg.DataDir = *c.dataDirFlag
	}
	if *c.logLevelFlag != "" {
		cfg.LogLevel = *c.logLevelFlag
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	store := session.NewStore(database.Conn())
	gw := gateway.NewClient(cfg.APIBaseURL, store, time.Duration(cfg.RequestTimeout)*time.Second, logger)

	c.cfg = cfg
	c.logger = logger
	c.database = database
	c.store = store
	c.journal = runs.NewRepository(database.Conn())
	c.gw = gw
	c.flow = auth.NewFlow(gw, store, logger)
	return nil
}

func (c *commandContext) close() {
	if c.database != nil {
		c.database.Close()
	}
}
