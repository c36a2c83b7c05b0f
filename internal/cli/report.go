package cli

import (
	"fmt"
	"time"

	"github.com/pankajredekar/stockroom/internal/config"
	"github.com/pankajredekar/stockroom/internal/notify"
	"github.com/pankajredekar/stockroom/internal/service"
	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/spf13/cobra"
)

var reportSend bool

// newNotifier returns the Telegram notifier, or nil when alerts are not configured.
func newNotifier(cfg *config.Config) (notify.Notifier, error) {
	if !cfg.Alerts.Enabled() {
		return nil, nil
	}
	tg, err := notify.NewTelegram(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID)
	if err != nil {
		return nil, err
	}
	return tg, nil
}

func alertLocation(cfg *config.Config) *time.Location {
	loc, err := time.LoadLocation(cfg.Alerts.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the low-stock report",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := newApp(ctx)
		defer a.Close()

		var notifier notify.Notifier
		if reportSend {
			n, err := newNotifier(a.cfg)
			if err != nil {
				exit("Failed to connect to Telegram: %v", err)
			}
			if n == nil {
				exit("Alerts are not configured, set TELEGRAM_TOKEN and TELEGRAM_CHAT_ID")
			}
			notifier = n
		}

		reports := service.NewReportService(a.stats, notifier, a.logger.With("report"))
		now := time.Now().In(alertLocation(a.cfg))
		text, _, err := reports.LowStockReport(ctx, now)
		if err != nil {
			exit("Failed to build report: %v", err)
		}
		fmt.Fprint(utils.Output, text)

		if !reportSend {
			return
		}
		if _, err := reports.Send(ctx, now, true); err != nil {
			exit("Failed to send report: %v", err)
		}
		utils.PrintSuccess("Report sent")
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportSend, "send", false, "also send the report to Telegram")
	rootCmd.AddCommand(reportCmd)
}
