// Package telegram connects the chat engine to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/config"
	"github.com/heartmarshall/cityguide-bot/internal/wizard"
)

const (
	maxTextLen    = 4096
	maxCaptionLen = 1024

	msgBusy    = "Still working on your previous messages, please wait."
	msgExpired = "This button has expired."
)

type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Client receives updates by long polling and sends replies.
type Client struct {
	api         botAPI
	http        *http.Client
	pollTimeout int
	maxFile     int64
	log         *slog.Logger
}

var _ wizard.Sender = (*Client)(nil)

// New authorizes the bot token against the API.
func New(cfg config.TelegramConfig, media config.MediaConfig, log *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: authorize: %w", err)
	}
	api.Debug = cfg.Debug

	c := newClient(api, cfg.PollTimeout, media.MaxBytes, log)
	c.log.Info("telegram bot authorized", slog.String("username", api.Self.UserName))
	return c, nil
}

func newClient(api botAPI, pollTimeout int, maxFile int64, log *slog.Logger) *Client {
	return &Client{
		api:         api,
		http:        &http.Client{Timeout: 30 * time.Second},
		pollTimeout: pollTimeout,
		maxFile:     maxFile,
		log:         log.With("transport", "telegram"),
	}
}

// Run polls for updates and passes each one to dispatch until ctx is done.
func (c *Client) Run(ctx context.Context, dispatch func(wizard.Event) error) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	updates := c.api.GetUpdatesChan(u)
	defer c.api.StopReceivingUpdates()

	c.log.Info("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.handleUpdate(ctx, update, dispatch)
		}
	}
}

func (c *Client) handleUpdate(ctx context.Context, update tgbotapi.Update, dispatch func(wizard.Event) error) {
	ev, ok := toEvent(update)
	if cb := update.CallbackQuery; cb != nil {
		text := ""
		if !ok {
			text = msgExpired
		}
		if _, err := c.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
			c.log.WarnContext(ctx, "answer callback", slog.String("error", err.Error()))
		}
	}
	if !ok {
		return
	}

	err := dispatch(ev)
	switch {
	case err == nil:
	case errors.Is(err, wizard.ErrQueueFull):
		c.log.WarnContext(ctx, "chat queue full", slog.Int64("chat_id", ev.ChatID))
		if err := c.Send(ctx, ev.ChatID, wizard.Reply{Text: msgBusy}); err != nil {
			c.log.WarnContext(ctx, "send busy notice", slog.String("error", err.Error()))
		}
	default:
		c.log.WarnContext(ctx, "dispatch update",
			slog.Int("update_id", update.UpdateID),
			slog.String("error", err.Error()),
		)
	}
}

// toEvent converts an update into an engine event. Updates without a
// sender and buttons whose payload does not decode are dropped.
func toEvent(update tgbotapi.Update) (wizard.Event, bool) {
	if msg := update.Message; msg != nil {
		if msg.From == nil || msg.Chat == nil {
			return wizard.Event{}, false
		}
		ev := wizard.Event{ChatID: msg.Chat.ID, UserID: msg.From.ID, Text: msg.Text}
		if n := len(msg.Photo); n > 0 {
			ev.Photo = &wizard.Photo{FileID: msg.Photo[n-1].FileID}
			ev.Text = msg.Caption
		}
		return ev, true
	}

	if cb := update.CallbackQuery; cb != nil {
		if cb.From == nil {
			return wizard.Event{}, false
		}
		cmd, err := command.Decode(cb.Data)
		if err != nil {
			return wizard.Event{}, false
		}
		chatID := cb.From.ID
		if cb.Message != nil && cb.Message.Chat != nil {
			chatID = cb.Message.Chat.ID
		}
		return wizard.Event{ChatID: chatID, UserID: cb.From.ID, Command: &cmd}, true
	}
	return wizard.Event{}, false
}

// Send delivers one reply. A photo that the API refuses is replaced by a
// plain text message.
func (c *Client) Send(ctx context.Context, chatID int64, reply wizard.Reply) error {
	markup, dropped := keyboard(reply.Buttons)
	for _, label := range dropped {
		c.log.WarnContext(ctx, "button dropped", slog.String("label", label))
	}

	if reply.Photo != "" {
		p := tgbotapi.NewPhoto(chatID, photoFile(reply.Photo))
		long := len([]rune(reply.Text)) > maxCaptionLen
		if !long {
			p.Caption = reply.Text
			if markup != nil {
				p.ReplyMarkup = *markup
			}
		}
		_, err := c.api.Send(p)
		switch {
		case err != nil:
			c.log.WarnContext(ctx, "send photo", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		case !long:
			return nil
		}
	}

	msg := tgbotapi.NewMessage(chatID, clip(reply.Text, maxTextLen))
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

// Fetch downloads a file the user sent.
func (c *Client) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("telegram: file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: file request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: download file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxFile+1))
	if err != nil {
		return nil, fmt.Errorf("telegram: read file: %w", err)
	}
	if int64(len(data)) > c.maxFile {
		return nil, fmt.Errorf("telegram: file larger than %d bytes", c.maxFile)
	}
	return data, nil
}

// keyboard builds inline buttons. Buttons whose command does not encode are
// left out and their labels returned.
func keyboard(buttons [][]wizard.Button) (*tgbotapi.InlineKeyboardMarkup, []string) {
	var (
		out     [][]tgbotapi.InlineKeyboardButton
		dropped []string
	)
	for _, row := range buttons {
		var line []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			switch {
			case b.URL != "":
				line = append(line, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
			case b.Command != nil:
				data, err := command.Encode(*b.Command)
				if err != nil {
					dropped = append(dropped, b.Label)
					continue
				}
				line = append(line, tgbotapi.NewInlineKeyboardButtonData(b.Label, data))
			default:
				dropped = append(dropped, b.Label)
			}
		}
		if len(line) > 0 {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return nil, dropped
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &markup, dropped
}

func photoFile(ref string) tgbotapi.RequestFileData {
	if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		return tgbotapi.FileURL(ref)
	}
	return tgbotapi.FileID(ref)
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
