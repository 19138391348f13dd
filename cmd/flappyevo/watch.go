package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
)

var (
	flagWatchPolicy   string
	flagWatchChampion string
	flagWatchBirds    int
	flagWatchEpisodes int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a policy or a trained champion fly",
	Long: `Play episodes back to back in the terminal at the configured tick rate.

By default a built-in policy flies (see 'flappyevo policies'). With
--champion the best network of a recorded training run flies instead; the
run can be given as a full id, a unique id prefix or "latest".

Controls:
  P/Space    - Freeze the view
  Ctrl+S     - Save a text screenshot
  ?          - Toggle help
  Q/Ctrl+C   - Quit

Examples:
  flappyevo watch
  flappyevo watch --policy flapper --birds 5
  flappyevo watch --champion latest
  flappyevo watch --champion 3f2a9c1b --episodes 3`,
	Args: cobra.NoArgs,
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagWatchPolicy, "policy", "seeker", "Built-in policy to watch")
	watchCmd.Flags().StringVar(&flagWatchChampion, "champion", "", "Watch the champion of this run instead (id, prefix or \"latest\")")
	watchCmd.Flags().IntVar(&flagWatchBirds, "birds", 1, "Birds per episode")
	watchCmd.Flags().IntVar(&flagWatchEpisodes, "episodes", 0, "Episodes to play (0 = until quit)")
}

func runWatch(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	controllers, err := resolveControllers(flagWatchPolicy, flagWatchChampion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sprites, err := loadSprites(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sprites: %v\n", err)
		os.Exit(1)
	}

	src := tui.EpisodeLoop(cfg, controllers.factory, tui.LoopOptions{
		Birds:    flagWatchBirds,
		Seed:     resolveSeed(),
		Episodes: flagWatchEpisodes,
		Sprites:  sprites,
		Pause:    2 * time.Second,
	})

	ctx, stop := signalContext()
	defer stop()

	width, height := terminalSize()
	err = tui.Run(ctx, src, tui.Options{
		Title:  controllers.title,
		FPS:    flagFPS,
		Width:  width,
		Height: height,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
