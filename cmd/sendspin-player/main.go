// ABOUTME: Entry point for the Sendspin player
// ABOUTME: Parses CLI flags and starts the player application
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrisuthe/sendspin-player/internal/app"
	"github.com/chrisuthe/sendspin-player/internal/paths"
	"github.com/chrisuthe/sendspin-player/internal/version"
)

var (
	serverAddr = flag.String("server", "", "Server address (host:port)")
	name       = flag.String("name", "", "Player friendly name (default: hostname-sendspin-player)")
	bufferMs   = flag.Int("buffer-ms", 150, "Extra client-side buffering in milliseconds")
	quality    = flag.Int("quality", 5, "Resampler quality, 0 (fastest) to 10 (best)")
	logFile    = flag.String("log-file", "", "Log file path (default: state dir)")
	streamLogs = flag.Bool("stream-logs", false, "Also log to stdout")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version.String())
		return
	}

	if *serverAddr == "" {
		log.Fatal("-server is required")
	}

	logPath := *logFile
	if logPath == "" {
		p, err := paths.LogFile()
		if err != nil {
			log.Fatalf("failed to resolve log path: %v", err)
		}
		logPath = p
	}

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if *streamLogs {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		log.SetOutput(f)
	}

	playerName := *name
	if playerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		playerName = fmt.Sprintf("%s-sendspin-player", hostname)
	}

	log.Printf("Starting %s as %q", version.String(), playerName)

	player := app.New(app.Config{
		ServerAddr: *serverAddr,
		Name:       playerName,
		BufferMs:   *bufferMs,
		Quality:    *quality,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Printf("Shutting down")
		player.Stop()
	}()

	if err := player.Start(); err != nil {
		log.Fatalf("Player failed: %v", err)
	}
}
