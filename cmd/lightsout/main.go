package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abrezinsky/lightsout/internal/app"
	"github.com/abrezinsky/lightsout/internal/browser"
	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/web"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

// showBanner prints the start gantry with all five lights on
func showBanner() {
	border := strings.Repeat("═", 44)
	lights := strings.TrimSpace(strings.Repeat(red+"●"+reset+"  ", 5))

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	fmt.Printf("  %s║%s%s%s║%s\n", cyan, reset, center("L I G H T S   O U T", 44, bold+yellow), cyan, reset)
	fmt.Printf("  %s║%s%s%s║%s\n", cyan, reset, strings.Repeat(" ", 44), cyan, reset)
	fmt.Printf("  %s║%s%s%s%s%s║%s\n", cyan, reset, strings.Repeat(" ", 15), lights, strings.Repeat(" ", 16), cyan, reset)
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

// center pads text to width, coloring only the text
func center(text string, width int, color string) string {
	left := (width - len(text)) / 2
	right := width - len(text) - left
	return strings.Repeat(" ", left) + color + text + reset + strings.Repeat(" ", right)
}

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "lightsout.db", "SQLite database path")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	openBrowser := flag.Bool("open", false, "Open the game in a browser on startup")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Lights Out - F1 start reaction game

Usage:
  lightsout [options]

Options:
  -port int      HTTP server port (default 8080)
  -db string     SQLite database path (default "lightsout.db")
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -open          Open the game in a browser on startup
  -nokeyboard    Disable keyboard shortcuts
  -version       Show version and exit
  -help          Show this help message

Keyboard Shortcuts (when enabled):
  o              Open the game in a browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  m              Toggle sound
  q              Quit server
  ?              Show keyboard help

Examples:
  lightsout                          # Run on port 8080 with lightsout.db
  lightsout -port 9000 -open         # Run on port 9000 and open the game
  lightsout -db /data/lightsout.db   # Use custom database path

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("lightsout %s\n", version)
		os.Exit(0)
	}

	showBanner()

	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))

	a, err := app.New(appLog, app.Config{
		DBPath:      *dbPath,
		TemplatesFS: web.GetTemplatesFS(),
		StaticFS:    web.GetStaticFS(),
	})
	if err != nil {
		appLog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(fmt.Sprintf(":%d", *port))
	}()

	localURL := fmt.Sprintf("http://localhost:%d", *port)
	if *openBrowser {
		if err := browser.Open(localURL); err != nil {
			appLog.Warn("Failed to open browser", "error", err)
		}
	}

	restore := func() {}
	if !*noKeyboard {
		c := &console{
			out:         os.Stdout,
			log:         appLog,
			url:         localURL,
			open:        browser.Open,
			toggleSound: a.ToggleSound,
			quit:        a.Close,
		}
		c.printHelp()
		restore = startKeyboard(c, os.Stdin)
	} else {
		fmt.Printf("%sKeyboard shortcuts disabled%s\n\n", gray, reset)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		a.Close()
	}()

	err = <-serverErr
	restore()
	if err != nil {
		appLog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
	fmt.Printf("%sServer stopped%s\n", yellow, reset)
}
