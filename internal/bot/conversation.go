package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskflow/internal/model"
	"taskflow/internal/planner"
	"taskflow/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stagePriority
	stageDate
	stageCategory
	stageRecurring
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what should it be called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, escape(service.ErrTitleRequired.Error())+".", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Add a short description (or Skip).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "🚦 Priority? Skip keeps it at medium.", priorityKeyboard())
	case stagePriority:
		if !isSkipInput(text) {
			p := model.Priority(strings.ToLower(text))
			if !p.Valid() {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Pick critical, high, medium or low.", priorityKeyboard())
			}
			state.input.Priority = p
		}
		state.stage = stageDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ Target date? Use <code>2025-11-30</code> or pick a button.", dateKeyboard())
	case stageDate:
		date, ok := dateChoice(text, b.now())
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "I can't read that date. Try <code>2025-11-30</code>.", dateKeyboard())
		}
		state.input.TargetDate = string(date)
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Pick a category or type your own (or Skip).", categoryKeyboard())
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = text
		}
		state.stage = stageRecurring
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 Should it repeat?", recurrenceKeyboard())
	case stageRecurring:
		recurring, freq, ok := parseRecurrence(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Pick one of the buttons.", recurrenceKeyboard())
		}
		state.input.IsRecurring = recurring
		state.input.RecurringFreq = freq
		err := b.finishTaskCreation(ctx, msg.From, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversation reset. Start again with /newtask.")
	}
}

// dateChoice resolves the date step's answer.
func dateChoice(text string, now time.Time) (model.Date, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case strings.ToLower(btnToday):
		return planner.Today(now), true
	case strings.ToLower(btnTomorrow):
		return planner.Today(now.AddDate(0, 0, 1)), true
	}
	return planner.ParseDateInput(text, now)
}

func (b *Bot) finishTaskCreation(ctx context.Context, from *tgbotapi.User, input service.TaskInput, chatID int64) error {
	user, sess, err := b.session(ctx, from)
	if err != nil {
		return b.sendTextWithRemove(chatID, errorText(err))
	}

	op, err := b.tasks.AddTask(ctx, sess, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, errorText(err))
	}
	if err := b.wait(ctx, op); err != nil {
		return b.sendTextWithRemove(chatID, errorText(err))
	}

	log.Printf("[info] task created user=%d mode=%s recurring=%t", user.TelegramID, sess.Mode(), input.IsRecurring)

	var summary strings.Builder
	summary.WriteString("✅ <b>Task added!</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", escape(normalizeTitle(input.Title))))
	if input.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Description:</b> %s\n", escape(input.Description)))
	}
	if input.Priority != "" {
		summary.WriteString(fmt.Sprintf("• <b>Priority:</b> %s\n", input.Priority))
	}
	summary.WriteString(fmt.Sprintf("• <b>Target date:</b> %s\n", planner.FormatDate(model.Date(input.TargetDate), time.UTC)))
	if input.Category != "" {
		summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", escape(input.Category)))
	}
	if input.IsRecurring {
		summary.WriteString(fmt.Sprintf("• <b>Repeats:</b> %s\n", input.RecurringFreq))
	}
	return b.sendText(chatID, strings.TrimSpace(summary.String()))
}
