package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pajamadot/storyforge/internal/api"
	"github.com/pajamadot/storyforge/internal/cache"
	"github.com/pajamadot/storyforge/internal/config"
	"github.com/pajamadot/storyforge/internal/events"
	"github.com/pajamadot/storyforge/internal/mqtt"
	"github.com/pajamadot/storyforge/internal/storage/fsdir"
	"github.com/pajamadot/storyforge/internal/storage/postgres"
	"github.com/pajamadot/storyforge/internal/version"
)

type LogLine struct {
	Timestamp string         `json:"ts"`
	Level     string         `json:"level"`
	Event     string         `json:"event"`
	Message   string         `json:"msg,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func logEvent(level, event, msg string, fields map[string]any) {
	line := LogLine{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Event:     event,
		Message:   msg,
		Fields:    fields,
	}
	b, _ := json.Marshal(line)
	fmt.Println(string(b))
}

func main() {
	configPath := flag.String("config", "storyforge.yaml", "path to service config")
	flag.Parse()

	cfg, err := config.LoadServiceConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", *configPath, err)
	}

	hostname, _ := os.Hostname()
	logEvent("info", "system.startup", "storyforge starting", map[string]any{
		"service":  "storyforged",
		"version":  version.Version,
		"hostname": hostname,
		"pid":      os.Getpid(),
		"project":  cfg.Project.ID,
	})

	var storage cache.Storage
	switch cfg.StorageBackend() {
	case "postgres":
		client, err := postgres.New(cfg.Project.ID)
		if err != nil {
			log.Fatalf("postgres storage unavailable: %v", err)
		}
		defer client.Close()
		events.SetPostgresClient(client)
		storage = client
	case "dir":
		dir, err := fsdir.New(cfg.DocumentDir())
		if err != nil {
			log.Fatalf("document dir unavailable: %v", err)
		}
		storage = dir
	default:
		log.Fatalf("unknown storage backend: %s", cfg.Storage.Backend)
	}

	store := cache.NewStore(storage)
	server := api.NewServer(store, time.Duration(cfg.AutosaveDebounceMS())*time.Millisecond)

	if cfg.MQTT.Enabled {
		client := mqtt.NewClient(cfg.MQTT.URL, "storyforged-"+cfg.Project.ID)
		if err := client.Connect(); err != nil {
			// The bridge is best-effort; the paho client keeps retrying in
			// the background.
			log.Printf("mqtt connect failed, continuing: %v", err)
		}
		topic := cfg.MQTT.Topic
		if topic == "" {
			topic = "storyforge/" + cfg.Project.ID + "/events"
		}
		bridge := mqtt.NewBridge(client, topic)
		go bridge.Run()
		defer func() {
			bridge.Stop()
			client.Disconnect()
		}()
	}

	go func() {
		if err := server.ListenAndServe(cfg.APIPort()); err != nil {
			log.Fatalf("api server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logEvent("info", "system.shutdown", "storyforge stopping", map[string]any{
		"service": "storyforged",
	})
}
