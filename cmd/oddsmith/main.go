package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/oddsmith/internal/backtest"
	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/database"
	"github.com/yourusername/oddsmith/internal/features"
	"github.com/yourusername/oddsmith/internal/ledger"
	"github.com/yourusername/oddsmith/internal/logger"
	"github.com/yourusername/oddsmith/internal/metrics"
	"github.com/yourusername/oddsmith/internal/oddsfeed"
	"github.com/yourusername/oddsmith/internal/repository"
	"github.com/yourusername/oddsmith/internal/scheduler"
	"github.com/yourusername/oddsmith/internal/service"
	"github.com/yourusername/oddsmith/internal/staking"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile    string
	secretsRegion string
	secretsName   string

	cfg   *config.Config
	logr  *logrus.Logger
	db    *database.DB
	repos *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&secretsRegion, "aws-region", "", "AWS region for Secrets Manager overlay")
	rootCmd.PersistentFlags().StringVar(&secretsName, "aws-secret", "", "AWS Secrets Manager secret name; enables the overlay")

	backtestCmd.Flags().String("sport", "", "Sport key to replay (required)")
	backtestCmd.MarkFlagRequired("sport")

	trainCmd.Flags().String("sport", "", "Sport key to train on (required)")
	trainCmd.MarkFlagRequired("sport")
	trainCmd.Flags().String("start", "", "Training window start (YYYY-MM-DD, defaults to backtest start)")
	trainCmd.Flags().String("end", "", "Training window end (YYYY-MM-DD, defaults to backtest end)")

	rootCmd.AddCommand(runCmd, backtestCmd, trainCmd, statsCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "oddsmith",
	Short: "Win probability estimation and fractional Kelly staking for paired contests",
	Long: `Oddsmith estimates win probabilities for paired sporting contests from
historical results, sizes stakes with the fractional Kelly criterion, and
backtests the whole pipeline over the stored contest log.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if secretsName != "" {
		if err := config.LoadSecretsFromAWS(cfg, secretsRegion, secretsName); err != nil {
			return fmt.Errorf("failed to overlay secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	logr = logger.New(cfg.App.LogLevel, cfg.App.Environment)
	return nil
}

func setupDependencies(ctx context.Context) error {
	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	metrics.InitRegistry()
	return nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduled prediction and settlement cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		predictor, err := service.LoadPredictor(ctx, cfg.Model, repos.Model, logr)
		if err != nil {
			return err
		}

		bets, err := ledger.New(ctx, repos.Wager, repos.Bankroll, cfg.Backtest.StartingBankroll, logr)
		if err != nil {
			return err
		}

		feed := oddsfeed.NewClient(cfg.OddsAPI, logr)
		defer feed.Close()

		if cfg.OddsAPI.StreamURL != "" {
			stream := oddsfeed.NewStreamClient(cfg.OddsAPI.StreamURL, cfg.OddsAPI.APIKey, logr)
			stream.AddHandler(func(update oddsfeed.PriceUpdate) error {
				feed.ApplyPriceUpdate(update)
				return nil
			})
			if err := stream.Connect(ctx); err != nil {
				logr.WithError(err).Warn("Price stream unavailable, polling only")
			} else {
				defer stream.Close()
				if err := stream.Subscribe(cfg.Cycle.Sports); err != nil {
					logr.WithError(err).Warn("Price stream subscription failed")
				}
			}
		}

		cycle := service.NewCycle(
			cfg.Cycle,
			repos.Contest,
			bets,
			features.NewExtractor(repos.Contest, cfg.FeatureCacheTTL(), logr),
			predictor,
			staking.NewSizer(cfg.Staking),
			feed,
			logr,
		)

		sched := scheduler.NewScheduler(cycle, logr)
		if err := sched.Schedule(cfg.Cycle); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}

		if cfg.Metrics.Enabled {
			go func() {
				addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
				logr.WithField("addr", addr).Info("Serving metrics")
				if err := metrics.Serve(addr, cfg.Metrics.Path); err != nil {
					logr.WithError(err).Error("Metrics server stopped")
				}
			}()
		}

		logr.WithFields(logrus.Fields{
			"sports":   cfg.Cycle.Sports,
			"model":    predictor.Name(),
			"next_run": sched.NextRun(),
		}).Info("Oddsmith running")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logr.Info("Shutting down")
		sched.Stop()
		return nil
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical contests and report simulated performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		sport, _ := cmd.Flags().GetString("sport")

		predictor, err := service.LoadPredictor(cmd.Context(), cfg.Model, repos.Model, logr)
		if err != nil {
			return err
		}

		runner, err := backtest.NewRunner(cfg.Backtest, repos.Contest, predictor, staking.NewSizer(cfg.Staking), logr)
		if err != nil {
			return err
		}

		report, err := runner.Run(cmd.Context(), sport)
		if err != nil {
			return err
		}

		fmt.Print(backtest.GenerateConsoleReport(report))
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the linear model on completed contests",
	RunE: func(cmd *cobra.Command, args []string) error {
		sport, _ := cmd.Flags().GetString("sport")

		start, err := windowFlag(cmd, "start", cfg.Backtest.StartDate)
		if err != nil {
			return err
		}
		end, err := windowFlag(cmd, "end", cfg.Backtest.EndDate)
		if err != nil {
			return err
		}

		trainer := service.NewTrainer(cfg.Model, repos.Contest, repos.Model, logr)
		result, err := trainer.Train(cmd.Context(), sport, start, end.Add(24*time.Hour))
		if err != nil {
			return err
		}

		fmt.Printf("Trained on %d samples over %d epochs (best accuracy %.2f%%)\n",
			result.Samples, result.Epochs, result.BestAccuracy*100)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print bankroll and wager statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		bets, err := ledger.New(cmd.Context(), repos.Wager, repos.Bankroll, cfg.Backtest.StartingBankroll, logr)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(bets.Stats(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("oddsmith %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func windowFlag(cmd *cobra.Command, name, fallback string) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		value = fallback
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q: %w", name, value, err)
	}
	return t, nil
}
