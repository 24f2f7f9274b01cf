package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Brownie44l1/plaga-api/internal/diagnosis"
)

const (
	msgStart = `🌱 ¡Hola! Identifico plagas en fotos de tus cultivos.

📸 Envíame una foto de la planta afectada.

📋 Comandos:
/describe <cultivo> <síntomas> - diagnóstico por síntomas
/help - ayuda`

	msgHelp = `ℹ️ Cómo usar el bot:

1️⃣ Envía una foto nítida de la hoja, tallo o fruto afectado
2️⃣ Recibirás las plagas más probables con sus soluciones

También puedes describir los síntomas:
/describe maiz hojas con agujeros irregulares`

	msgSendPhoto       = "📸 Envía una foto de la planta o usa /describe."
	msgUnknownCommand  = "❓ Comando desconocido. Usa /help."
	msgProcessing      = "⏳ Analizando imagen..."
	msgProcessingError = "⚠️ No se pudo descargar la imagen. Inténtalo de nuevo."
	msgDescribeUsage   = "Uso: /describe <cultivo> <síntomas>"
)

// Diagnoser is what the bot needs from the diagnosis service.
type Diagnoser interface {
	AnalyzeImage(ctx context.Context, src []byte) *diagnosis.Report
	DescribeSymptoms(ctx context.Context, crop, symptoms string) (*diagnosis.Report, error)
}

// Bot is the Telegram front-end.
type Bot struct {
	api       *tgbotapi.BotAPI
	diagnoser Diagnoser
	logger    *slog.Logger
}

// NewBot authorizes against the Telegram API.
func NewBot(token string, diagnoser Diagnoser, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "telegram")
	logger.Info("authorized", "account", api.Self.UserName)

	return &Bot{api: api, diagnoser: diagnoser, logger: logger}, nil
}

// Run processes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, msgStart)
	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)
	case "describe":
		crop, symptoms := parseDescribeArgs(msg.CommandArguments())
		report, err := b.diagnoser.DescribeSymptoms(ctx, crop, symptoms)
		if err != nil {
			b.sendMessage(msg.Chat.ID, msgDescribeUsage)
			return
		}
		b.sendMessage(msg.Chat.ID, FormatReport(report))
	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	b.sendMessage(msg.Chat.ID, msgProcessing)

	// largest resolution comes last
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.logger.Error("error downloading photo", "err", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	b.logger.Info("received photo", "bytes", len(imageData), "chat", msg.Chat.ID)
	b.sendMessage(msg.Chat.ID, FormatReport(b.diagnoser.AnalyzeImage(ctx, imageData)))
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	return fetchFile(ctx, http.DefaultClient, file.Link(b.api.Token))
}

func fetchFile(ctx context.Context, client *http.Client, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("error sending message", "err", err)
	}
}

// parseDescribeArgs splits "<crop> <symptoms...>".
func parseDescribeArgs(args string) (crop, symptoms string) {
	crop, symptoms, _ = strings.Cut(strings.TrimSpace(args), " ")
	return crop, strings.TrimSpace(symptoms)
}

// FormatReport renders a report as a plain text message.
func FormatReport(r *diagnosis.Report) string {
	var sb strings.Builder
	if r.Warning != "" {
		sb.WriteString("⚠️ " + r.Warning + "\n\n")
	}
	if len(r.Findings) == 0 {
		sb.WriteString("✅ No se detectaron plagas con suficiente confianza.")
		return sb.String()
	}

	for i, f := range r.Findings {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "🐛 %s (%s)\n", f.Pest, f.Scientific)
		fmt.Fprintf(&sb, "Confianza: %d%% · Severidad: %s\n", f.Confidence, f.Severity.Label())
		sb.WriteString(f.Description + "\n")
		sb.WriteString("Soluciones recomendadas:\n")
		for _, remedy := range f.Remedies {
			sb.WriteString("• " + remedy + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
