// Package tray shows the system tray icon with inspector and reset actions.
package tray

import (
	_ "embed"
	"log"
	"net"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

//go:embed icon.ico
var iconData []byte

// GetIcon returns the embedded tray icon.
func GetIcon() []byte {
	return iconData
}

// Options configures the tray menu actions.
type Options struct {
	// URL is opened by "Open Inspector".
	URL string
	// Reset is called when "Reset Bindings" is clicked.
	Reset func()
	// Shutdown is called once when "Exit" is clicked.
	Shutdown func()
}

// Tray manages the system tray icon and menu
type Tray struct {
	opts         Options
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuReset    *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a new Tray instance
func New(opts Options) *Tray {
	return &Tray{
		opts: opts,
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.onExit()
	})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	t.shuttingDown.Store(true)
	systray.Quit()
}

// onReady is called when the tray is ready
func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("inputmap")
	systray.SetTooltip("inputmap - " + t.opts.URL)

	t.menuOpen = systray.AddMenuItem("Open Inspector", "Open the binding inspector")
	t.menuReset = systray.AddMenuItem("Reset Bindings", "Restore default bindings")
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	// Handle menu clicks in separate goroutines to prevent blocking
	go t.handleMenuClicks()

	log.Println("System tray initialized")
}

// handleMenuClicks processes menu item clicks without blocking
func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				openBrowser(t.opts.URL)
			}
		case <-t.menuReset.ClickedCh:
			if !t.shuttingDown.Load() && t.opts.Reset != nil {
				t.opts.Reset()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				if t.opts.Shutdown != nil {
					t.once.Do(t.opts.Shutdown)
				}
				systray.Quit()
				return
			}
		}
	}
}

// onExit is called when the tray is exiting
func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	log.Println("System tray exiting")
}

// InspectorURL turns a listen address into a browsable URL. An empty or
// wildcard host becomes localhost.
func InspectorURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// openBrowser opens the default web browser
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
