package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kipped/internal/database"
	"kipped/internal/services"
	"kipped/internal/utils"
)

const (
	callbackDone    = "done:"
	callbackArchive = "archive:"
	callbackSummary = "summary:"
)

type handlerFunc func(ctx context.Context, msg *tgbotapi.Message, args string)

type Bot struct {
	api      *tgbotapi.BotAPI
	s        sender
	chatID   int64
	services *services.ServiceManager
	handlers map[string]handlerFunc
	wg       sync.WaitGroup
}

func NewBot(token string, chatID int64, serviceManager *services.ServiceManager) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	bot := newBot(botAPISender{api: botAPI}, chatID, serviceManager)
	bot.api = botAPI
	log.Printf("🤖 Bot initialized: %s", botAPI.Self.UserName)
	return bot, nil
}

func newBot(s sender, chatID int64, serviceManager *services.ServiceManager) *Bot {
	bot := &Bot{
		s:        s,
		chatID:   chatID,
		services: serviceManager,
		handlers: make(map[string]handlerFunc),
	}
	bot.registerHandlers()
	return bot
}

func (b *Bot) registerHandlers() {
	b.handlers["/start"] = b.handleStart
	b.handlers["/help"] = b.handleStart
	b.handlers["/note"] = b.handleNote
	b.handlers["/today"] = b.handleToday
	b.handlers["/edit"] = b.handleEdit
	b.handlers["/delnote"] = b.handleDeleteNote
	b.handlers["/notes"] = b.handleNotes
	b.handlers["/month"] = b.handleMonth
	b.handlers["/year"] = b.handleYear
	b.handlers["/streak"] = b.handleStreak
	b.handlers["/memories"] = b.handleMemories
	b.handlers["/summary"] = b.handleSummary
	b.handlers["/todo"] = b.handleAddTodo
	b.handlers["/todos"] = b.handleTodos
	b.handlers["/done"] = b.handleDone
	b.handlers["/retitle"] = b.handleRetitle
	b.handlers["/archive"] = b.handleArchive
	b.handlers["/unarchive"] = b.handleUnarchive
	b.handlers["/archived"] = b.handleArchived
	b.handlers["/deltodo"] = b.handleDeleteTodo
	b.handlers["/settings"] = b.handleSettings
	b.handlers["/set"] = b.handleSet
	b.handlers["/export"] = b.handleExport
}

func (b *Bot) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.s.Send(msg)
	return err
}

// SendTodoReminder delivers a due to-do with buttons to complete or archive it.
func (b *Bot) SendTodoReminder(todo database.TodoNotification) error {
	text := fmt.Sprintf("🔔 <b>Reminder</b>\n\n%s\n⏰ %s",
		escape(todo.Title), utils.FormatTimeForDisplay(todo.ReminderDate))

	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = b.createTodoKeyboard(todo.ID)
	_, err := b.s.Send(msg)
	return err
}

func (b *Bot) createTodoKeyboard(todoID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", callbackDone+todoID),
			tgbotapi.NewInlineKeyboardButtonData("🗄 Archive", callbackArchive+todoID),
		),
	)
}

func (b *Bot) createSummaryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓 Week", callbackSummary+string(database.Weekly)),
			tgbotapi.NewInlineKeyboardButtonData("📅 Month", callbackSummary+string(database.Monthly)),
			tgbotapi.NewInlineKeyboardButtonData("🎆 Year", callbackSummary+string(database.Yearly)),
		),
	)
}

func (b *Bot) GetUsername() string {
	if b.api == nil {
		return ""
	}
	return b.api.Self.UserName
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Chat == nil {
		return
	}

	if update.Message.Chat.ID != b.chatID {
		log.Printf("⛔ Rejected message from chat %d", update.Message.Chat.ID)
		reply := tgbotapi.NewMessage(update.Message.Chat.ID, "⛔ Access denied")
		if _, err := b.s.Send(reply); err != nil {
			log.Printf("❌ Failed to reject chat %d: %v", update.Message.Chat.ID, err)
		}
		return
	}

	b.handleMessage(ctx, update.Message)
}

// handleMessage dispatches commands; any other text becomes today's note.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if !strings.HasPrefix(text, "/") {
		b.saveNote(b.services.Now(), text)
		return
	}

	command, args := splitCommand(text)
	if handler, exists := b.handlers[command]; exists {
		handler(ctx, msg, args)
		return
	}
	b.SendMessageOrLogError("❌ Unknown command. Use /help")
}

// splitCommand separates "/cmd@botname rest" into "/cmd" and "rest".
func splitCommand(text string) (string, string) {
	command, args, _ := strings.Cut(text, " ")
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	return strings.ToLower(command), strings.TrimSpace(args)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.s.Request(tgbotapi.NewCallback(callback.ID, "✅")); err != nil {
			log.Printf("⚠️ Callback answer failed: %v", err)
		}
	}()

	if callback.Message == nil || callback.Message.Chat == nil || callback.Message.Chat.ID != b.chatID {
		return
	}

	data := callback.Data
	log.Printf("Received callback: %s", data)

	switch {
	case strings.HasPrefix(data, callbackDone):
		id := strings.TrimPrefix(data, callbackDone)
		todo, ok := b.services.Todos.Lookup(id)
		if !ok {
			b.SendMessageOrLogError("❌ To-do not found")
			return
		}
		if !todo.IsCompleted {
			b.services.Todos.ToggleCompletion(todo.ID)
		}
		b.SendMessageOrLogError(fmt.Sprintf("✅ Done: %s", escape(todo.Title)))
	case strings.HasPrefix(data, callbackArchive):
		todo, ok := b.services.Todos.Archive(strings.TrimPrefix(data, callbackArchive))
		if !ok {
			b.SendMessageOrLogError("❌ To-do not found")
			return
		}
		b.SendMessageOrLogError(fmt.Sprintf("🗄 Archived: %s", escape(todo.Title)))
	case strings.HasPrefix(data, callbackSummary):
		period, ok := database.ParsePeriod(strings.TrimPrefix(data, callbackSummary))
		if !ok {
			return
		}
		b.sendSummaryAsync(ctx, period, b.services.Now())
	}
}

// Wait blocks until background work started by handlers has finished.
func (b *Bot) Wait() {
	b.wg.Wait()
}
