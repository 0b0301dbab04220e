// Package main is a terminal front end for the Pokemon box: the same commands
// the Discord bot serves, answered on stdin.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keshon/pokebox/internal/app"
	"github.com/keshon/pokebox/internal/command"
	"github.com/keshon/pokebox/internal/config"
	"github.com/keshon/pokebox/internal/console"
	"github.com/keshon/pokebox/internal/logging"
)

var (
	asUser        string
	guildID       string
	storageDriver string
)

var rootCmd = &cobra.Command{
	Use:   "pokebox",
	Short: "Pokemon box keeper",
	Long: `Keep a box of Pokemon per user. Commands that ask questions read the
answers from stdin; prefix a line with @name to answer as another user.`,
	SilenceUsage: true,
}

var boxCmd = &cobra.Command{
	Use:   "box [user]",
	Short: "Show the Pokemon in a box",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCommand("box"),
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new Pokemon to add to your box",
	Args:  cobra.NoArgs,
	RunE:  runCommand("pokemon", "create"),
}

var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Get info on a Pokemon",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommand("pokemon", "info"),
}

var releaseCmd = &cobra.Command{
	Use:   "release <id>",
	Short: "Release a Pokemon from your box",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommand("pokemon", "release"),
}

var tradeCmd = &cobra.Command{
	Use:   "trade <your_id> <their_id> <user>",
	Short: "Offer a trade; the other user answers with @user rp!accept or rp!decline",
	Args:  cobra.ExactArgs(3),
	RunE:  runCommand("pokemon", "trade"),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&asUser, "as", "trainer", "User running the command")
	rootCmd.PersistentFlags().StringVar(&guildID, "guild", console.Channel, "Guild the box belongs to")
	rootCmd.PersistentFlags().StringVar(&storageDriver, "storage", "", "Storage driver (datastore, sqlite, redis, memory); defaults to STORAGE_DRIVER")

	rootCmd.AddCommand(boxCmd, createCmd, infoCmd, releaseCmd, tradeCmd)
}

// runCommand dispatches name with the fixed leading args plus the positional
// arguments through the shared command registry.
func runCommand(name string, leading ...string) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if storageDriver != "" {
			cfg.StorageDriver = storageDriver
		}

		logger, err := logging.New(cfg.LogLevel, cfg.DevMode)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		store, err := app.OpenStorage(cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tr := console.New(c.OutOrStdout(), asUser)
		go func() { _ = tr.Feed(ctx, c.InOrStdin()) }()

		services := app.NewServices(cfg, store, tr, console.Directory{}, logger)
		cc := &command.Context{
			Services:  services,
			GuildID:   guildID,
			ChannelID: console.Channel,
			Author:    command.User{ID: asUser, Name: asUser},
		}
		return command.Dispatch(ctx, cc, name, append(leading, args...))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
