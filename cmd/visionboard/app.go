package main

import (
	"fmt"
	"path/filepath"

	"visionboard/internal/board"
	"visionboard/internal/config"
	"visionboard/internal/logging"
	"visionboard/internal/orchestration"
	"visionboard/internal/provider"
	"visionboard/internal/registry"
	"visionboard/internal/store"
)

// app bundles the wired components behind every command.
type app struct {
	cfg       *config.UserConfig
	store     *store.Store
	providers *provider.Providers
	registry  *registry.Registry
	board     *board.Manager
	delegator *orchestration.Delegator
	chat      *orchestration.ChatEngine
}

// notify prints a user-facing notice, matching the board's error banner.
func notify(message string) {
	fmt.Printf("Notice: %s\n", message)
}

// newApp loads config and wires the full component graph.
func newApp() (*app, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(workspace, config.DefaultUserConfigPath())
	}
	cfg, err := config.LoadUserConfig(path)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = config.DefaultDBPath(workspace)
	}
	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	providers := provider.NewProviders(cfg)

	reg := registry.Default()
	if cfg.FamilyFile != "" {
		family, err := registry.LoadFamilyFile(cfg.FamilyFile)
		if err != nil {
			st.Close()
			return nil, err
		}
		reg = registry.New(family)
	}

	boardMgr := board.NewManager(st, providers, notify)
	log := orchestration.NewLog()
	delegator := orchestration.NewDelegator(reg, providers, boardMgr, log)
	chat := orchestration.NewChatEngine(reg, providers, st, delegator, notify)

	logging.Boot("Application wired: %d personas, %d board items", len(reg.Members()), len(boardMgr.Items()))
	return &app{
		cfg:       cfg,
		store:     st,
		providers: providers,
		registry:  reg,
		board:     boardMgr,
		delegator: delegator,
		chat:      chat,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if err := a.providers.Close(); err != nil {
		logging.Boot("Provider close failed: %v", err)
	}
	if err := a.store.Close(); err != nil {
		logging.Boot("Store close failed: %v", err)
	}
}
