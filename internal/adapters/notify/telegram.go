package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/alejandrodnm/laybot/internal/domain"
	"github.com/alejandrodnm/laybot/internal/ports"
)

// Intervalo mínimo entre mensajes al mismo chat para no tropezar con el
// límite de Telegram (~30/min).
const telegramSendInterval = 2 * time.Second

// botAPI es la parte del cliente de Telegram que usamos; la interfaz
// permite un fake en tests.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram envía las apuestas colocadas y los descartes a un chat. El
// estado de seguimiento por ciclo no se envía; eso es ruido de consola.
type Telegram struct {
	bot    botAPI
	chatID int64

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegram crea el notificador para el token y chat dados.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify.NewTelegram: %w", err)
	}
	bot.Debug = false
	slog.Info("telegram notifier initialized", "chat_id", chatID)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// NotifyTracking no envía nada: la tabla de seguimiento por ciclo saturaría
// el chat.
func (t *Telegram) NotifyTracking(context.Context, []domain.Status) error { return nil }

// NotifyBetPlaced envía el resumen de la apuesta colocada.
func (t *Telegram) NotifyBetPlaced(ctx context.Context, rec domain.BetRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "*LAY BET PLACED*\n\n")
	fmt.Fprintf(&b, "*%s* (%s)\n", escapeMarkdown(rec.EventName), escapeMarkdown(rec.Competition))
	fmt.Fprintf(&b, "%s → %s\n", escapeMarkdown(rec.MarketName), escapeMarkdown(rec.Selection))
	fmt.Fprintf(&b, "Entry: minute %d, score %s\n", rec.MinuteOfEntry, rec.ScoreAtEntry)
	fmt.Fprintf(&b, "Price: *%.2f* | Stake: %.2f | Liability: %.2f\n", rec.FinalLayPrice, rec.Stake, rec.Liability)
	fmt.Fprintf(&b, "Bet ID: `%s`", rec.BetID)
	return t.send(ctx, b.String())
}

// NotifyBetSkipped envía el motivo del descarte.
func (t *Telegram) NotifyBetSkipped(ctx context.Context, skip domain.SkippedMatch) error {
	var b strings.Builder
	fmt.Fprintf(&b, "*BET SKIPPED*\n\n")
	fmt.Fprintf(&b, "*%s* (%s)\n", escapeMarkdown(skip.EventName), escapeMarkdown(skip.Competition))
	fmt.Fprintf(&b, "Minute %d, score %s\n", skip.Minute, skip.Score)
	fmt.Fprintf(&b, "Reason: %s", escapeMarkdown(skip.Reason))
	return t.send(ctx, b.String())
}

// send entrega el mensaje respetando el intervalo mínimo entre envíos.
func (t *Telegram) send(ctx context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wait := telegramSendInterval - time.Since(t.lastSend); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	t.lastSend = time.Now()

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("notify.Telegram: send: %w", err)
	}
	return nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}

// Multi reparte cada notificación a varios notificadores; el primero que
// falle corta la cadena.
type Multi []ports.Notifier

func (m Multi) NotifyTracking(ctx context.Context, statuses []domain.Status) error {
	for _, n := range m {
		if err := n.NotifyTracking(ctx, statuses); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) NotifyBetPlaced(ctx context.Context, rec domain.BetRecord) error {
	for _, n := range m {
		if err := n.NotifyBetPlaced(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) NotifyBetSkipped(ctx context.Context, skip domain.SkippedMatch) error {
	for _, n := range m {
		if err := n.NotifyBetSkipped(ctx, skip); err != nil {
			return err
		}
	}
	return nil
}
