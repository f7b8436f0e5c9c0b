// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	"github.com/helmsense/hub/internal/config"
	"github.com/helmsense/hub/internal/server"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting HelmSense Hub Server v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"    __  __     __          _____                     ",
		"   / / / /__  / /_ _  ____/ ___/___  ____  ________  ",
		"  / /_/ / _ \\/ / __ `__ \\\\__ \\/ _ \\/ __ \\/ ___/ _ \\ ",
		" / __  /  __/ / / / / / /__/ /  __/ / / (__  )  __/  ",
		"/_/ /_/\\___/_/_/ /_/ /_/____/\\___/_/ /_/____/\\___/   ",
		"..................................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
