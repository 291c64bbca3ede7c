package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wsi-recon/internal/domain/entity"
	"wsi-recon/internal/domain/port"
)

// Notifier отправляет сводки о завершённых прогонах в Telegram-чат.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier создаёт уведомитель для заданного токена бота и чата.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Notifier{api: api, chatID: chatID}, nil
}

// NotifyRunCompleted отправляет короткую сводку статистики прогона.
func (n *Notifier) NotifyRunCompleted(ctx context.Context, run *entity.RunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatRunSummary(run))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send run summary: %w", err)
	}
	return nil
}

func formatRunSummary(run *entity.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s completed\n", run.ID)
	fmt.Fprintf(&b, "Slide: %s (%dx%d)\n", run.Slide.Path, run.Slide.Width, run.Slide.Height)
	fmt.Fprintf(&b, "Regions: %d, avg confidence %.2f\n", run.Stats.Total, run.Stats.AvgConfidence)

	classes := make([]string, 0, len(run.Stats.ByClass))
	for class := range run.Stats.ByClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		fmt.Fprintf(&b, "  %s: %d\n", class, run.Stats.ByClass[class])
	}
	return b.String()
}

var _ port.Notifier = (*Notifier)(nil)
