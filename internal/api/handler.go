package api

import (
	"log/slog"

	"github.com/shaiso/Prospector/internal/artifact"
	"github.com/shaiso/Prospector/internal/mq"
	"github.com/shaiso/Prospector/internal/orchestrator"
	"github.com/shaiso/Prospector/internal/planner"
	"github.com/shaiso/Prospector/internal/registry"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	store     registry.Store
	engine    *orchestrator.Engine
	artifacts *artifact.Store
	planner   *planner.Planner
	publisher *mq.Publisher
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Store     registry.Store
	Engine    *orchestrator.Engine
	Artifacts *artifact.Store

	// Planner — опционально; nil отключает POST /plans/generate.
	Planner *planner.Planner

	// Publisher — опционально; nil отключает зеркало событий в RabbitMQ.
	Publisher *mq.Publisher

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		store:     cfg.Store,
		engine:    cfg.Engine,
		artifacts: cfg.Artifacts,
		planner:   cfg.Planner,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}
