package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/abrezinsky/lightsout/internal/logger"
)

// console runs the keyboard shortcuts of a running server
type console struct {
	out         io.Writer
	log         logger.Logger
	url         string
	open        func(url string) error
	toggleSound func() (bool, error)
	quit        func()
}

// say prints one line. Raw mode needs the explicit carriage return.
func (c *console) say(color, format string, args ...any) {
	fmt.Fprintf(c.out, color+format+reset+"\r\n", args...)
}

func (c *console) printHelp() {
	c.say(bold+green, "  Keyboard shortcuts:")
	c.say("", "    %so%s      - Open the game in a browser", cyan, reset)
	c.say("", "    %sh%s      - Toggle HTTP request logging", cyan, reset)
	c.say("", "    %sl%s      - Cycle log level (debug → info → warn → error)", cyan, reset)
	c.say("", "    %sm%s      - Toggle sound", cyan, reset)
	c.say("", "    %sq%s      - Quit server", cyan, reset)
	c.say("", "    %s?%s      - Show this help", cyan, reset)
	c.say("", "")
}

// handleKey runs the shortcut bound to key and reports whether the console
// should stop listening
func (c *console) handleKey(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "o":
		c.say(cyan, "Opening %s ...", c.url)
		if err := c.open(c.url); err != nil {
			c.say(red, "Error opening browser: %v", err)
		}
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			c.say(yellow, "HTTP logging disabled")
		} else {
			c.log.EnableHTTPLogging()
			c.say(green, "HTTP logging enabled")
		}
	case "l":
		next := logger.NextLevel(c.log.GetLevel())
		c.log.SetLevel(next)
		c.say(green, "Log level: %s%s", yellow, strings.ToLower(next.String()))
	case "m":
		on, err := c.toggleSound()
		switch {
		case err != nil:
			c.say(red, "Error toggling sound: %v", err)
		case on:
			c.say(green, "Sound on")
		default:
			c.say(yellow, "Sound off")
		}
	case "q", "\x03": // Ctrl+C arrives as a byte in raw mode
		c.say(yellow, "Shutting down server...")
		c.quit()
		return true
	case "?":
		c.printHelp()
	}
	return false
}

// listen feeds every byte read from in to handleKey until quit or EOF
func (c *console) listen(in io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return
		}
		if n == 1 && c.handleKey(buf[0]) {
			return
		}
	}
}

// startKeyboard puts the terminal in raw mode and listens for shortcuts. The
// returned function restores the terminal. Without a terminal on stdin the
// shortcuts are disabled.
func startKeyboard(c *console, stdin *os.File) (restore func()) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		c.log.Debug("Stdin is not a terminal, keyboard shortcuts disabled")
		return func() {}
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		c.log.Warn("Failed to enter raw terminal mode", "error", err)
		return func() {}
	}

	var once sync.Once
	restore = func() {
		once.Do(func() { term.Restore(fd, state) })
	}
	go c.listen(stdin)
	return restore
}
