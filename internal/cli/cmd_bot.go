package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/backend"
	"taskflow/internal/bot"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

// reviewJobTimeout bounds one scheduled weekly review run.
const reviewJobTimeout = 2 * time.Minute

// newBotCmd creates the bot command
func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Run the Telegram bot until interrupted.

Users start anonymous with their own local list and switch to the
synced list with /signin. Signed-in users get the weekly review on
REVIEW_DAY at REVIEW_TIME.

Environment:
  TELEGRAM_TOKEN   bot token (required)
  DATABASE_URL     SQLite file (default taskflow.db)
  REMOTE_URL       postgres:// URL for the synced list (default: the SQLite file)
  REVIEW_DAY       weekday of the weekly review (default sunday)
  REVIEW_TIME      HH:MM of the weekly review (default 18:00)
  TIMEZONE         IANA zone for dates and the schedule (default Local)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx)
		},
	}
}

func runBot(ctx context.Context) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.cfg.ValidateBot(); err != nil {
		return err
	}

	users := repository.NewUserRepository(a.db)
	reviews := service.NewReviewService(a.remote)
	sessions := bot.NewSessions(a.local, a.remote, backend.WithLocalKey(a.cfg.LocalKey))
	defer sessions.Close()

	telegramBot, err := bot.New(a.cfg.TelegramToken, users, a.tasks, reviews, sessions)
	if err != nil {
		return fmt.Errorf("start bot: %w", err)
	}

	scheduler := service.NewSchedulerService(a.cfg.Location)
	if _, err := scheduler.ScheduleWeekly(a.cfg.ReviewDay, a.cfg.ReviewTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), reviewJobTimeout)
		defer cancel()
		if err := telegramBot.SendWeeklyReviews(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[warn] weekly review: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule weekly review: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Printf("[info] taskflow bot started remote=%s review=%s %s", remoteKind(a), a.cfg.ReviewDay, a.cfg.ReviewTime)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped: %w", err)
	}
	log.Println("[info] shutdown complete")
	return nil
}

func remoteKind(a *app) string {
	if a.pool != nil {
		return "postgres"
	}
	return "sqlite"
}
