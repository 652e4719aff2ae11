// Prospector Mock Enrich — dev-заглушка внешних сервисов обогащения.
//
// Поднимает три endpoint'а, которые в проде отдают сторонние сервисы:
//
//	GET /enrich-profile/{username}         — сырой текст профиля
//	GET /profile-instagram-user/{username} — классификация с метками
//	GET /linkedin-summary/{username}       — сводка по профилю
//
// Ответы случайные, задержки имитируют профиль латентности настоящих
// сервисов. Только для локальной разработки и демо.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shaiso/Prospector/internal/telemetry"
)

// Порт совпадает с адресом по умолчанию клиентов enrich и linkedin.
const defaultPort = "13732"

var enrichmentSamples = []string{
	"Active university student, interested in startups and productivity workflows.",
	"Outdoor enthusiast; frequent posts about hiking, skiing, and mountain photography.",
	"Food lover experimenting with fusion recipes; occasional travel diaries.",
	"Aspiring content creator focused on tech gadgets and workflow optimization.",
	"Golfer on weekends, studies engineering, shares campus club activities.",
}

var classifierSamples = []classification{
	{
		Labels: []string{"UBC", "teen", "golf", "female"},
		Data: classificationText{
			Text: "this girl is clearly an avid golf player who regularly goes to <Golf Course Name> on saturdays. They seem to attend UBC.",
		},
	},
	{
		Labels: []string{"UAB", "teen", "skiing", "male", "food", "travel"},
		Data: classificationText{
			Text: "this person likes to travel a lot on vacations, especially to ski resorts. They also seem to enjoy trying out different foods and food photography.",
		},
	},
}

var summaryIntros = []string{
	"Senior software engineer with a background in distributed systems",
	"Marketing lead who writes about growth experiments and retention",
	"Product designer focused on developer tooling and design systems",
	"Founder of a small analytics startup, ex-data engineer",
	"Community manager active in open source and local meetups",
}

type classification struct {
	Labels   []string           `json:"labels"`
	Data     classificationText `json:"data"`
	Username string             `json:"username"`
}

type classificationText struct {
	Text string `json:"text"`
}

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting prospector-mockenrich")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /enrich-profile/{username}", func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		sleep(400, 900)
		writeJSON(w, map[string]string{
			"username": username,
			"raw_text": enrichmentSamples[rand.Intn(len(enrichmentSamples))],
		})
		logger.Info("enrich served", "username", username)
	})

	mux.HandleFunc("GET /profile-instagram-user/{username}", func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		sleep(1500, 2500)
		result := classifierSamples[rand.Intn(len(classifierSamples))]
		result.Username = username
		writeJSON(w, result)
		logger.Info("classification served", "username", username)
	})

	mux.HandleFunc("GET /linkedin-summary/{username}", func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		sleep(800, 1600)

		summary := summaryIntros[rand.Intn(len(summaryIntros))] + "."
		if tags := r.URL.Query().Get("tags"); tags != "" {
			summary += fmt.Sprintf(" Posts regularly about %s.", strings.ReplaceAll(tags, ",", ", "))
		}

		writeJSON(w, map[string]string{
			"username":   username,
			"summary":    summary,
			"fetched_at": time.Now().UTC().Format(time.RFC3339),
		})
		logger.Info("linkedin summary served", "username", username)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not Found"})
	})

	addr := ":" + defaultPort
	if v := os.Getenv("MOCK_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// sleep имитирует латентность внешнего сервиса в миллисекундах.
func sleep(minMs, maxMs int) {
	time.Sleep(time.Duration(minMs+rand.Intn(maxMs-minMs)) * time.Millisecond)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(v)
}
