package app

import (
	"encoding/json"
	"math/rand/v2"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/lightsout/internal/clock"
	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/race"
)

func testConfig(dbPath string) Config {
	return Config{
		DBPath: dbPath,
		TemplatesFS: fstest.MapFS{
			"index.html": &fstest.MapFile{Data: []byte(`<title>{{.Title}}</title>`)},
		},
		StaticFS: fstest.MapFS{},
		Clock:    clock.NewManual(time.Date(2024, 6, 30, 14, 0, 0, 0, time.UTC)),
		Rand:     rand.New(rand.NewPCG(3, 4)),
	}
}

func createTestApp(t *testing.T) *App {
	t.Helper()
	app, err := New(logger.Nop(), testConfig(":memory:"))
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestNew_InitializesApp(t *testing.T) {
	app := createTestApp(t)

	if app.handlers == nil || app.repo == nil || app.hub == nil || app.session == nil {
		t.Fatal("expected every component to be initialized")
	}
	if !app.sound.Enabled() {
		t.Error("expected sound to follow the default settings")
	}
	if app.CurrentSettings() != models.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", app.CurrentSettings())
	}
}

func TestNew_FailsWithBadDBPath(t *testing.T) {
	_, err := New(logger.Nop(), testConfig("/nonexistent/path/db.sqlite"))
	if err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestNew_FailsWithMissingTemplates(t *testing.T) {
	cfg := testConfig(":memory:")
	cfg.TemplatesFS = fstest.MapFS{}

	if _, err := New(logger.Nop(), cfg); err == nil {
		t.Error("expected error for missing templates")
	}
}

func TestNew_RestoresSettings(t *testing.T) {
	path := t.TempDir() + "/lightsout.db"

	first, err := New(logger.Nop(), testConfig(path))
	if err != nil {
		t.Fatal(err)
	}
	if on, err := first.ToggleSound(); err != nil || on {
		t.Fatalf("expected sound off, got %v %v", on, err)
	}
	first.Close()

	second, err := New(logger.Nop(), testConfig(path))
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	if second.CurrentSettings().SoundEnabled || second.sound.Enabled() {
		t.Error("sound setting not restored from the database")
	}
}

func TestApp_Router_ServesRequests(t *testing.T) {
	app := createTestApp(t)

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Lights Out") {
		t.Errorf("unexpected index response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestApp_RaceEventsReachWebsocketClients(t *testing.T) {
	app := createTestApp(t)
	server := httptest.NewServer(app.Router())
	defer server.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:]+"/ws", nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer ws.Close()

	read := func() (string, json.RawMessage) {
		t.Helper()
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("read failed: %v", err)
		}
		return msg.Type, msg.Payload
	}

	if typ, _ := read(); typ != "race_state" {
		t.Fatalf("expected initial race_state, got %s", typ)
	}

	ws.WriteJSON(map[string]string{"type": "start"})

	var sawCue, sawCountdown bool
	for i := 0; i < 4 && !(sawCue && sawCountdown); i++ {
		typ, payload := read()
		switch typ {
		case "cue":
			sawCue = strings.Contains(string(payload), "countdown")
		case "race_state":
			var snap race.Snapshot
			json.Unmarshal(payload, &snap)
			sawCountdown = snap.State == race.Countdown
		}
	}
	if !sawCue || !sawCountdown {
		t.Errorf("expected countdown cue and state, got cue=%v state=%v", sawCue, sawCountdown)
	}
}

func TestApp_ServeAndClose(t *testing.T) {
	app, err := New(logger.Nop(), testConfig(":memory:"))
	if err != nil {
		t.Fatal(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	done := make(chan error, 1)
	go func() { done <- app.Serve(ln) }()

	url := "http://" + ln.Addr().String() + "/api/health"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()

	if base := app.BaseURL(); !strings.HasSuffix(base, ":"+strconv.Itoa(port)) || !strings.HasPrefix(base, "http://") {
		t.Errorf("unexpected base URL %q", base)
	}

	app.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_InvalidAddress(t *testing.T) {
	app := createTestApp(t)
	if err := app.Run("not-an-address"); err == nil {
		t.Error("expected listen error")
	}
}

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

// mockNetworkProvider implements networkProvider for testing
type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func ipNet(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

func TestGetPreferredIP(t *testing.T) {
	tests := []struct {
		name     string
		provider mockNetworkProvider
		want     string
	}{
		{
			name:     "provider error",
			provider: mockNetworkProvider{err: net.ErrClosed},
			want:     "localhost",
		},
		{
			name: "addrs error",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, err: net.ErrClosed},
			}},
			want: "localhost",
		},
		{
			name: "ip addr",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("192.168.1.100")}}},
			}},
			want: "192.168.1.100",
		},
		{
			name: "public fallback",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8")}},
			}},
			want: "8.8.8.8",
		},
		{
			name: "private preferred over earlier public",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8")}},
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("172.20.0.5")}},
			}},
			want: "172.20.0.5",
		},
		{
			name: "loopback address skipped",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("127.0.0.1"), ipNet("10.0.0.7")}},
			}},
			want: "10.0.0.7",
		},
		{
			name: "down and loopback interfaces skipped",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: 0, addrs: []net.Addr{ipNet("192.168.0.2")}},
				mockInterface{flags: net.FlagUp | net.FlagLoopback, addrs: []net.Addr{ipNet("192.168.0.3")}},
			}},
			want: "localhost",
		},
		{
			name: "ipv6 ignored",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("fd00::1"), Mask: net.CIDRMask(64, 128)}}},
			}},
			want: "localhost",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPreferredIP(tt.provider); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetPreferredIP_RealNetwork(t *testing.T) {
	ip := getPreferredIP(realNetworkProvider{})
	if ip == "localhost" {
		return
	}
	if parsed := net.ParseIP(ip); parsed == nil || parsed.To4() == nil {
		t.Errorf("expected IPv4 address or localhost, got %s", ip)
	}
}
