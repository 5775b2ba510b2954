package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tathya/tathya-cli/internal/devstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	envFile   string
	seedUsers int
	seedPosts int
	seedPass  string
)

var rootCmd = &cobra.Command{
	Use:   "devstore",
	Short: "Reference post store for the TATHYA CLI",
	Long: `devstore serves the TATHYA feed API from a local sqlite (or postgres)
database. Configure it with DEVSTORE_* environment variables or a .env file.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return devstore.NewServer(cfg, db, log).Run(ctx)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake campus data",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		opts := devstore.DefaultSeedOptions()
		opts.Users, opts.Posts = seedUsers, seedPosts
		if seedPass != "" {
			opts.Password = seedPass
		}
		res, err := devstore.NewSeeder(devstore.NewRepository(db), log).Seed(cmd.Context(), opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d posts, %d comments, %d replies, %d likes\n",
			res.Users, res.Posts, res.Comments, res.Replies, res.Likes)
		fmt.Fprintf(cmd.OutOrStdout(), "Moderator login: %s / %s\n", res.Moderator, opts.Password)
		return nil
	},
}

func setup() (devstore.Config, *zap.Logger, *gorm.DB, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg := devstore.LoadConfig(files...)
	log := devstore.NewLogger(cfg.LogLevel, cfg.LogFile)

	db, err := devstore.Open(cfg.DSN, cfg.LogLevel == "debug")
	if err != nil {
		return cfg, log, nil, err
	}
	if err := devstore.Migrate(db); err != nil {
		return cfg, log, nil, err
	}
	return cfg, log, db, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load variables from this file (default: .env)")

	defaults := devstore.DefaultSeedOptions()
	seedCmd.Flags().IntVar(&seedUsers, "users", defaults.Users, "Accounts to create")
	seedCmd.Flags().IntVar(&seedPosts, "posts", defaults.Posts, "Posts to create")
	seedCmd.Flags().StringVar(&seedPass, "password", "", "Password for every account")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
