package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
)

var (
	flagSSHAddr       string
	flagHostKey       string
	flagIdleTimeout   int
	flagServePolicy   string
	flagServeChampion string
	flagServeBirds    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the spectator SSH server",
	Long: `Start an SSH server that lets anyone watch birds fly.

Each SSH connection gets its own endless run of episodes sized to its
terminal. Spectators see either a built-in policy or, with --champion, the
best network of a recorded training run.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.flappyevo/host_key

Examples:
  flappyevo serve                          # Listen on :23234, seeker policy
  flappyevo serve --ssh :2222 --birds 10   # Ten birds per episode
  flappyevo serve --champion latest        # Show the latest champion

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServePolicy, "policy", "seeker", "Built-in policy to show")
	serveCmd.Flags().StringVar(&flagServeChampion, "champion", "", "Show the champion of this run instead (id, prefix or \"latest\")")
	serveCmd.Flags().IntVar(&flagServeBirds, "birds", 1, "Birds per episode")
}

func runServe(_ *cobra.Command, _ []string) {
	controllers, err := resolveControllers(flagServePolicy, flagServeChampion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Sim:         loadConfig(),
		Title:       controllers.title,
		Factory:     controllers.factory,
		Birds:       flagServeBirds,
		Logger:      newLogger("flappyevo-ssh"),
	}

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting flappyevo SSH server on %s\n", server.Addr())
	if _, port, err := net.SplitHostPort(server.Addr()); err == nil {
		fmt.Printf("Connect with: ssh localhost -p %s\n", port)
	}
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signalContext()
	defer stop()

	if err := server.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
