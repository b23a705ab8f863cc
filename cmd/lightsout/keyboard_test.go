package main

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/abrezinsky/lightsout/internal/logger"
)

type fakeApp struct {
	opened  []string
	openErr error
	sound   bool
	quits   int
}

func newTestConsole() (*console, *fakeApp, *bytes.Buffer) {
	var out bytes.Buffer
	f := &fakeApp{sound: true}
	c := &console{
		out: &out,
		log: logger.NewWithWriter(&bytes.Buffer{}, slog.LevelInfo),
		url: "http://localhost:8080",
		open: func(url string) error {
			f.opened = append(f.opened, url)
			return f.openErr
		},
		toggleSound: func() (bool, error) {
			f.sound = !f.sound
			return f.sound, nil
		},
		quit: func() { f.quits++ },
	}
	return c, f, &out
}

func TestHandleKey_OpenGame(t *testing.T) {
	c, f, out := newTestConsole()

	if c.handleKey('o') {
		t.Error("o must not stop the console")
	}
	if len(f.opened) != 1 || f.opened[0] != "http://localhost:8080" {
		t.Errorf("expected game url to be opened, got %v", f.opened)
	}

	f.openErr = errors.New("no browser")
	c.handleKey('O')
	if !strings.Contains(out.String(), "no browser") {
		t.Error("expected open error to be printed")
	}
}

func TestHandleKey_HTTPLogging(t *testing.T) {
	c, _, _ := newTestConsole()

	c.handleKey('h')
	if !c.log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging enabled")
	}
	c.handleKey('h')
	if c.log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging disabled")
	}
}

func TestHandleKey_CycleLogLevel(t *testing.T) {
	c, _, out := newTestConsole()

	want := []slog.Level{slog.LevelWarn, slog.LevelError, slog.LevelDebug, slog.LevelInfo}
	for _, level := range want {
		c.handleKey('l')
		if got := c.log.GetLevel(); got != level {
			t.Fatalf("expected %s, got %s", level, got)
		}
	}
	if !strings.Contains(out.String(), "Log level: "+yellow+"debug") {
		t.Errorf("expected level to be printed, got %q", out.String())
	}
}

func TestHandleKey_ToggleSound(t *testing.T) {
	c, f, out := newTestConsole()

	c.handleKey('m')
	if f.sound || !strings.Contains(out.String(), "Sound off") {
		t.Error("expected sound off")
	}
	c.handleKey('m')
	if !f.sound || !strings.Contains(out.String(), "Sound on") {
		t.Error("expected sound on")
	}

	c.toggleSound = func() (bool, error) { return false, errors.New("disk full") }
	c.handleKey('m')
	if !strings.Contains(out.String(), "disk full") {
		t.Error("expected toggle error to be printed")
	}
}

func TestHandleKey_Quit(t *testing.T) {
	for _, key := range []byte{'q', 'Q', 0x03} {
		c, f, _ := newTestConsole()
		if !c.handleKey(key) {
			t.Errorf("key %q should stop the console", key)
		}
		if f.quits != 1 {
			t.Errorf("key %q: expected quit to be called once, got %d", key, f.quits)
		}
	}
}

func TestHandleKey_HelpAndUnknown(t *testing.T) {
	c, _, out := newTestConsole()

	c.handleKey('?')
	if !strings.Contains(out.String(), "Keyboard shortcuts") {
		t.Error("expected help output")
	}

	out.Reset()
	if c.handleKey('x') || out.Len() != 0 {
		t.Error("unknown keys should be ignored silently")
	}
}

func TestListen_StopsOnQuitAndEOF(t *testing.T) {
	c, f, _ := newTestConsole()
	c.listen(strings.NewReader("hmq?o"))

	if f.quits != 1 {
		t.Errorf("expected quit, got %d", f.quits)
	}
	if len(f.opened) != 0 {
		t.Error("keys after q must not be handled")
	}

	c, f, _ = newTestConsole()
	c.listen(strings.NewReader("m"))
	if f.sound || f.quits != 0 {
		t.Error("expected one toggle and a clean return at EOF")
	}
}

func TestCenter(t *testing.T) {
	got := center("GO", 6, "")
	if got != "  GO"+reset+"  " {
		t.Errorf("unexpected padding %q", got)
	}
}
