// Prospector API — HTTP-сервис движка выполнения планов.
//
// Сервис принимает планы (готовые или сгенерированные моделью),
// валидирует их, выполняет шаги строго последовательно и стримит
// события прогона клиенту через Server-Sent Events. Созданные
// отчёты доступны через /artifacts.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/shaiso/Prospector/internal/api"
	"github.com/shaiso/Prospector/internal/artifact"
	"github.com/shaiso/Prospector/internal/enrich"
	"github.com/shaiso/Prospector/internal/executor"
	"github.com/shaiso/Prospector/internal/linkedin"
	"github.com/shaiso/Prospector/internal/mq"
	"github.com/shaiso/Prospector/internal/orchestrator"
	"github.com/shaiso/Prospector/internal/outreach"
	"github.com/shaiso/Prospector/internal/planner"
	"github.com/shaiso/Prospector/internal/profiledb"
	"github.com/shaiso/Prospector/internal/registry"
	"github.com/shaiso/Prospector/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting prospector-api")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Подключаемся к базе профилей
	pool, err := profiledb.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Хранилища: планы в памяти процесса, артефакты на диске
	store := registry.NewMemory()
	artifacts := artifact.NewStore()

	writer, err := artifact.NewCSVWriter(os.Getenv("ARTIFACT_DIR"), artifacts)
	if err != nil {
		logger.Error("failed to prepare artifact dir", "error", err)
		os.Exit(1)
	}

	// LLM опциональна: без ключа генерация планов отключена,
	// а сообщения строятся по шаблону из параметров шага.
	var model llms.Model
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		modelName := os.Getenv("LLM_MODEL")
		if modelName == "" {
			modelName = "gpt-4o-mini"
		}
		opts := []openai.Option{
			openai.WithToken(key),
			openai.WithModel(modelName),
		}
		if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		model, err = openai.New(opts...)
		if err != nil {
			logger.Error("failed to init llm client", "error", err)
			os.Exit(1)
		}
		logger.Info("llm configured", "model", modelName)
	} else {
		logger.Warn("OPENAI_API_KEY not set, plan generation disabled, outreach falls back to templates")
	}

	var plans *planner.Planner
	if model != nil {
		plans = planner.New(model, logger)
	}

	// Исполнители шагов и движок выполнения
	executors := executor.NewRegistry(executor.Config{
		Profiles: profiledb.NewClient(pool),
		Enricher: enrich.NewClient(os.Getenv("ENRICH_API_URL")),
		Research: linkedin.NewClient(os.Getenv("LINKEDIN_API_URL")),
		Messages: outreach.NewGenerator(outreach.Config{Model: model, Logger: logger}),
		Reports:  writer,
	})

	engine, err := orchestrator.New(orchestrator.Config{
		Store:     store,
		Executors: executors,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		os.Exit(1)
	}

	// RabbitMQ-зеркало событий. Его отказ не мешает ни API,
	// ни выполнению планов: сервис работает без зеркала.
	var publisher *mq.Publisher
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		amqpURL = mq.DefaultURL()
	}
	mqConn, err := mq.NewConnection(amqpURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, event mirror disabled", "error", err)
	} else {
		defer mqConn.Close()
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		publisher = mq.NewPublisher(mqConn, logger)
		logger.Info("RabbitMQ connected, mirroring plan events")
	}

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		Store:     store,
		Engine:    engine,
		Artifacts: artifacts,
		Planner:   plans,
		Publisher: publisher,
		Logger:    logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
