package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
	"github.com/mycguo/autogen-multi-agent-workflow/tui"
)

func main() {
	// Load environment
	_ = godotenv.Load()

	// Parse command-line flags
	daemonURL := flag.String("url", config.GetEnvOrDefault("SHORTS_DAEMON_URL", "http://localhost:8080"), "Shorts daemon URL")
	publish := flag.Bool("publish", false, "Ask the daemon to upload finished videos to YouTube")
	flag.Parse()

	// Create TUI model
	m := tui.NewModel(*daemonURL, *publish)

	// Create the tea program
	program := tea.NewProgram(m)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		program.Quit()
	}()

	// Run the program
	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
