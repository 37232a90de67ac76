// Command tutor is the CLI entry point for one tutoring session: it wires
// the Context Store, Knowledge Index, Expert Pipeline, Motivation
// Estimator, Cartographer/Organizer and Conductor onto a shared Event Bus,
// starts the configured transport, and on shutdown exports the session log,
// in the shape of the teacher's cmd/bud/main.go.
package main

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vthunder/tutor/internal/cartographer"
	"github.com/vthunder/tutor/internal/conductor"
	"github.com/vthunder/tutor/internal/config"
	"github.com/vthunder/tutor/internal/eventbus"
	"github.com/vthunder/tutor/internal/export"
	"github.com/vthunder/tutor/internal/expert"
	"github.com/vthunder/tutor/internal/knowledge"
	"github.com/vthunder/tutor/internal/logging"
	"github.com/vthunder/tutor/internal/mcptools"
	"github.com/vthunder/tutor/internal/motivation"
	"github.com/vthunder/tutor/internal/organizer"
	"github.com/vthunder/tutor/internal/sessionctx"
	"github.com/vthunder/tutor/internal/transport"
	"github.com/vthunder/tutor/internal/tts"
	"github.com/vthunder/tutor/internal/types"
)

func main() {
	log.Println("tutor - interactive tutoring runtime")
	log.Println("=====================================")

	config.LoadEnv(".env")

	configPath := envOr("CONFIG_PATH", "tutor.yaml")
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", configPath, err)
	}

	discipline := envOr("DISCIPLINE", "math")
	topic := envOr("TOPIC", "дроби")
	mode := envOr("MODE", "async") // async, live
	lessonNumber, _ := strconv.Atoi(envOr("LESSON_NUMBER", "1"))

	statePath := envOr("STATE_PATH", "state")
	os.MkdirAll(statePath, 0o755)

	knowledgeDir := envOr("KNOWLEDGE_DIR", filepath.Join(statePath, "knowledge"))
	docs := loadDocs(knowledgeDir)

	idx := knowledge.New()
	if err := idx.Load(knowledgeDir); err != nil {
		log.Printf("Warning: failed to load knowledge dir %s: %v", knowledgeDir, err)
	}
	log.Printf("[main] Knowledge index loaded (%d docs from %s)", len(docs), knowledgeDir)

	ctx := sessionctx.New(discipline, lessonNumber, topic, mode)
	ctx.TTS().Dir = envOr("TTS_DIR", filepath.Join(statePath, "tts"))

	bus := eventbus.New(cfg.EventBus.LogCap)

	cart := cartographer.New()
	org := organizer.New()
	exp := expert.New(cfg.Expert, idx)
	mot := motivation.New(cfg.Motivation)

	conductor.New(bus, ctx, cfg.Conductor, cart, org, exp, mot, topic, docs)

	synth := tts.NewLocalSynthesizer(16000)
	tts.New(bus, ctx, cfg.TTS, synth)

	// Transport: async (inbox/outbox JSONL) or live (Discord).
	var discordBridge *transport.DiscordBridge
	var asyncT *transport.AsyncTransport
	switch mode {
	case "live":
		token := os.Getenv("DISCORD_TOKEN")
		channelID := os.Getenv("DISCORD_CHANNEL_ID")
		if token == "" || channelID == "" {
			log.Fatal("DISCORD_TOKEN and DISCORD_CHANNEL_ID are required in live mode")
		}
		session, err := discordgo.New("Bot " + token)
		if err != nil {
			log.Fatalf("Failed to create discord session: %v", err)
		}
		discordBridge = transport.NewDiscordBridge(session, channelID, bus)
		if err := discordBridge.Open(); err != nil {
			log.Fatalf("Failed to open discord bridge: %v", err)
		}
		defer discordBridge.Close()
	default:
		inboxPath := envOr("INBOX_PATH", filepath.Join(statePath, "inbox.jsonl"))
		outboxPath := envOr("OUTBOX_PATH", filepath.Join(statePath, "outbox.jsonl"))
		asyncT = transport.NewAsyncTransport(bus, inboxPath, outboxPath)
		log.Printf("[main] Async transport watching %s, writing %s", inboxPath, outboxPath)
	}

	// Websocket observability tap, always on.
	wsAddr := envOr("WS_ADDR", "127.0.0.1:8077")
	hub := transport.NewWSHub(bus)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		log.Printf("[main] Websocket tap listening on %s/ws", wsAddr)
		if err := http.ListenAndServe(wsAddr, mux); err != nil {
			logging.Info("main", "websocket server error: %v", err)
		}
	}()

	// MCP tool surface, optional.
	if os.Getenv("MCP_ENABLED") == "true" {
		mcpServer := mcptools.New(ctx, exp, mot)
		go func() {
			if err := mcpServer.Serve(); err != nil {
				logging.Info("main", "mcp server error: %v", err)
			}
		}()
		log.Println("[main] MCP tool surface enabled over stdio")
	}

	bus.Publish(types.Event{Type: "init", Source: "main", Payload: map[string]any{"topic": topic}})
	log.Printf("[main] Session %s started: discipline=%s topic=%s mode=%s", bus.ID(), discipline, topic, mode)

	stopChan := make(chan struct{})

	if mode == "async" {
		go func() {
			ticker := time.NewTicker(1 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-stopChan:
					return
				case <-ticker.C:
					if n, err := asyncT.Poll(); err != nil {
						logging.Info("transport", "poll error: %v", err)
					} else if n > 0 {
						logging.Info("transport", "published %d question(s) from inbox", n)
					}
				}
			}
		}()
		// Default async-like REPL over stdin, for interactive local sessions
		// even while async transport watches the inbox file.
		go runStdinREPL(bus, ctx, stopChan)
	}

	log.Println("[main] All subsystems started. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("[main] Shutting down...")
	close(stopChan)

	exportSession(bus, ctx, envOr("EXPORT_DIR", filepath.Join(statePath, "export")))

	log.Println("[main] Goodbye!")
}

// runStdinREPL reads lines from stdin and publishes them as student_question
// or student_reflection depending on the lesson's current stage. It runs in
// async mode, alongside the file-backed inbox poller; live mode does not
// start it.
func runStdinREPL(bus *eventbus.Bus, ctx *sessionctx.Context, stopChan chan struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-stopChan:
			return
		default:
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		eventType := "student_question"
		if ctx.Conductor().Stage == "reflection" {
			eventType = "student_reflection"
		}
		bus.Publish(types.Event{
			Type:   eventType,
			Source: "stdin",
			Payload: map[string]any{"text": text},
		})
	}
}

func exportSession(bus *eventbus.Bus, ctx *sessionctx.Context, dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Warning: failed to create export dir %s: %v", dir, err)
		return
	}

	jsonPath := filepath.Join(dir, fmt.Sprintf("session-%s.json", bus.ID()))
	if err := export.JSON(bus, ctx, jsonPath); err != nil {
		log.Printf("Warning: JSON export failed: %v", err)
	} else {
		log.Printf("[main] Exported JSON log to %s", jsonPath)
	}

	csvPath := filepath.Join(dir, fmt.Sprintf("session-%s.csv", bus.ID()))
	if err := export.CSV(bus, csvPath); err != nil {
		log.Printf("Warning: CSV export failed: %v", err)
	} else {
		log.Printf("[main] Exported CSV log to %s", csvPath)
	}

	sqlitePath := filepath.Join(dir, fmt.Sprintf("session-%s.sqlite", bus.ID()))
	if err := export.SQLite(bus, ctx, sqlitePath); err != nil {
		log.Printf("Warning: SQLite export failed: %v", err)
	} else {
		log.Printf("[main] Exported SQLite log to %s", sqlitePath)
	}
}

// loadDocs reads every *.txt file in dir, sorted by name, the same way
// knowledge.Index.Load does, so the Cartographer sees the identical document
// set the Knowledge Index was built from.
func loadDocs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var docs []string
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		docs = append(docs, string(data))
	}
	return docs
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
