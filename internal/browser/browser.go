// Package browser opens the game page in the platform's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Commander starts external commands
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander starts commands with os/exec
type RealCommander struct{}

// Start runs the command without waiting for it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// launchers maps GOOS to the command that opens a URL
var launchers = map[string]func(url string) (string, []string){
	"linux":   func(url string) (string, []string) { return "xdg-open", []string{url} },
	"freebsd": func(url string) (string, []string) { return "xdg-open", []string{url} },
	"openbsd": func(url string) (string, []string) { return "xdg-open", []string{url} },
	"darwin":  func(url string) (string, []string) { return "open", []string{url} },
	"windows": func(url string) (string, []string) {
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	},
}

var defaultCommander Commander = RealCommander{}

// Open opens url in the default browser
func Open(url string) error {
	return OpenWithCommander(url, defaultCommander, runtime.GOOS)
}

// OpenWithCommander opens url with commander as if running on goos
func OpenWithCommander(url string, commander Commander, goos string) error {
	if url == "" {
		return fmt.Errorf("no url to open")
	}
	launch, ok := launchers[goos]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", goos)
	}
	name, args := launch(url)
	return commander.Start(name, args...)
}
