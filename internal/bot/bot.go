package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"taskflow/internal/backend"
	"taskflow/internal/codec"
	"taskflow/internal/model"
	"taskflow/internal/planner"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

const (
	// opTimeout bounds how long a handler waits for a remote write.
	opTimeout = 10 * time.Second
	// maxImportSize is the largest file accepted for import.
	maxImportSize = 1 << 20
	// reviewWorkers limits concurrent weekly review sends.
	reviewWorkers = 4
)

type confirmationRequest struct {
	taskID string
	title  string
}

type pendingImport struct {
	name  string
	tasks []model.Task
}

// Bot aggregates the Telegram API with the task services.
type Bot struct {
	api           *tgbotapi.BotAPI
	users         *repository.UserRepository
	tasks         *service.TaskService
	reviews       *service.ReviewService
	sessions      *Sessions
	httpClient    *http.Client
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	imports       map[int64]pendingImport
	mu            sync.Mutex
}

func New(token string, users *repository.UserRepository, tasks *service.TaskService, reviews *service.ReviewService, sessions *Sessions) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		users:         users,
		tasks:         tasks,
		reviews:       reviews,
		sessions:      sessions,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		imports:       make(map[int64]pendingImport),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.Document != nil {
		return b.handleDocument(ctx, msg)
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I didn't get that. Send /newtask to add a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "done":
		return b.handleComplete(ctx, msg)
	case "reopen":
		return b.handleReopen(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "review":
		return b.handleReview(ctx, msg)
	case "export":
		return b.handleExport(ctx, msg)
	case "signin":
		return b.handleSignIn(ctx, msg, true)
	case "signout":
		return b.handleSignIn(ctx, msg, false)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		b.clearImport(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, sess, err := b.session(ctx, msg.From)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}

	name := strings.TrimSpace(user.FirstName)
	if name == "" {
		name = "there"
	}

	mode := "Your tasks are kept on this bot only. /signin to sync them instead."
	if sess.Mode() == backend.ModeRemote {
		mode = "You're signed in: your tasks sync across devices."
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I'm your task planner.</b>\n%s\n\n"+
			"• /newtask — add a task\n"+
			"• /tasks — show your board\n"+
			"• /review — weekly review\n"+
			"• /help — all commands",
		escape(name), mode,
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /newtask — add a task step by step\n" +
		"• /tasks [status:done] [priority:high] [text] — board grouped by due date\n" +
		"• /done &lt;id&gt; — complete a task (recurring tasks roll over)\n" +
		"• /reopen &lt;id&gt; — move a task back to in progress\n" +
		"• /delete &lt;id&gt; — delete a task\n" +
		"• /stats — progress numbers\n" +
		"• /review — this week's review\n" +
		"• /export csv|json — download your tasks\n" +
		"• send a .csv or .json file to import tasks\n" +
		"• /signin, /signout — switch between synced and device-only tasks\n" +
		"• /cancel — cancel the current input\n\n" +
		"Ids are the short codes shown in /tasks."
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	filter, err := parseFilter(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}
	user, sess, err := b.session(ctx, msg.From)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	log.Printf("[info] list tasks for user=%d", user.TelegramID)
	return b.sendBoard(msg.Chat.ID, user, sess, filter)
}

func (b *Bot) sendBoard(chatID int64, user *model.User, sess *backend.Session, filter planner.Filter) error {
	now := b.tasks.Now()
	text, rows := renderBoard(b.tasks.Board(sess, filter), b.tasks.Stats(sess), now, b.sessions.Syncing(user.TelegramID))
	if err := sess.Err(); err != nil {
		text = errorText(err) + "\n\n" + text
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Give me the task id: /done 1a2b3c4d")
	}
	return b.completeTask(ctx, msg.Chat.ID, msg.From, ref)
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, from *tgbotapi.User, ref string) error {
	user, sess, err := b.session(ctx, from)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	c, err := b.tasks.CompleteTask(ctx, sess, ref)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if err := b.wait(ctx, c.Op); err != nil {
		return b.sendText(chatID, errorText(err))
	}
	log.Printf("[info] task completed id=%s user=%d recurring=%t", c.Task.ID, user.TelegramID, c.RolledOver())
	return b.sendText(chatID, completionText(c))
}

func (b *Bot) handleReopen(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Give me the task id: /reopen 1a2b3c4d")
	}
	return b.reopenTask(ctx, msg.Chat.ID, msg.From, ref)
}

func (b *Bot) reopenTask(ctx context.Context, chatID int64, from *tgbotapi.User, ref string) error {
	_, sess, err := b.session(ctx, from)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	op, err := b.tasks.ReopenTask(ctx, sess, ref)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if err := b.wait(ctx, op); err != nil {
		return b.sendText(chatID, errorText(err))
	}
	return b.sendText(chatID, "↩️ Task reopened.")
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Give me the task id: /delete 1a2b3c4d")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From, ref)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, ref string) error {
	_, sess, err := b.session(ctx, from)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	task, err := b.tasks.Resolve(sess, ref)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID, title: task.Title})
	text := fmt.Sprintf("Delete «%s»? This can't be undone.", escape(normalizeTitle(task.Title)))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deleteTask(ctx, msg.Chat.ID, msg.From, req)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Kept it.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, from *tgbotapi.User, req confirmationRequest) error {
	user, sess, err := b.session(ctx, from)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	_, op, err := b.tasks.DeleteTask(ctx, sess, req.taskID)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if err := b.wait(ctx, op); err != nil {
		return b.sendText(chatID, errorText(err))
	}
	log.Printf("[info] task deleted id=%s user=%d", req.taskID, user.TelegramID)
	return b.sendText(chatID, fmt.Sprintf("🗑 «%s» deleted.", escape(normalizeTitle(req.title))))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	_, sess, err := b.session(ctx, msg.From)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendText(msg.Chat.ID, formatStats(b.tasks.Stats(sess)))
}

func (b *Bot) handleReview(ctx context.Context, msg *tgbotapi.Message) error {
	_, sess, err := b.session(ctx, msg.From)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	return b.sendText(msg.Chat.ID, service.WeeklySummary(sess.Tasks(), b.tasks.Now()))
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) error {
	format := codec.FormatCSV
	if arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments())); arg != "" {
		f, err := codec.FormatOf("x." + arg)
		if err != nil {
			return b.sendText(msg.Chat.ID, errorText(err))
		}
		format = f
	}

	_, sess, err := b.session(ctx, msg.From)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	name, content, err := b.tasks.Export(sess, format)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: name, Bytes: []byte(content)})
	doc.Caption = fmt.Sprintf("📤 %d tasks exported", len(sess.Tasks()))
	_, err = b.api.Send(doc)
	return err
}

// handleDocument parses an uploaded file and shows a preview. Nothing is
// written until the user confirms.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) error {
	doc := msg.Document
	if _, err := codec.FormatOf(doc.FileName); err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if doc.FileSize > maxImportSize {
		return b.sendText(msg.Chat.ID, "That file is too large to import.")
	}

	content, err := b.download(ctx, doc.FileID)
	if errors.Is(err, errFileTooLarge) {
		return b.sendText(msg.Chat.ID, "That file is too large to import.")
	}
	if err != nil {
		log.Printf("download %s: %v", doc.FileName, err)
		return b.sendText(msg.Chat.ID, "Failed to read file.")
	}
	res, err := b.tasks.PreviewImport(doc.FileName, content)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}

	b.setImport(msg.From.ID, pendingImport{name: doc.FileName, tasks: res.Tasks})
	reply := tgbotapi.NewMessage(msg.Chat.ID, formatImportPreview(doc.FileName, res))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = importKeyboard()
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) download(ctx context.Context, fileID string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	return readLimited(resp.Body, maxImportSize)
}

// readLimited reads all of r, failing with errFileTooLarge when r holds
// more than limit bytes.
func readLimited(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", errFileTooLarge
	}
	return string(data), nil
}

func (b *Bot) confirmImport(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	pending, ok := b.takeImport(from.ID)
	if !ok {
		return b.sendText(chatID, "Nothing to import. Send a CSV or JSON file first.")
	}
	user, sess, err := b.session(ctx, from)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if err := b.wait(ctx, b.tasks.ImportTasks(ctx, sess, pending.tasks)); err != nil {
		return b.sendText(chatID, errorText(err))
	}
	log.Printf("[info] imported %d tasks from %s user=%d", len(pending.tasks), pending.name, user.TelegramID)
	return b.sendText(chatID, fmt.Sprintf("📥 %d tasks imported!", len(pending.tasks)))
}

// handleSignIn moves the user between the anonymous and signed-in modes.
// Tasks stay with the mode they were created in.
func (b *Bot) handleSignIn(ctx context.Context, msg *tgbotapi.Message, signedIn bool) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if user.SignedIn == signedIn {
		if signedIn {
			return b.sendText(msg.Chat.ID, "You're already signed in.")
		}
		return b.sendText(msg.Chat.ID, "You're not signed in.")
	}

	if err := b.users.SetSignedIn(ctx, user.TelegramID, signedIn); err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	user.SignedIn = signedIn
	b.clearImport(user.TelegramID)

	sess, err := b.sessions.Switch(ctx, *user)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	log.Printf("[info] user=%d switched to mode=%s", user.TelegramID, sess.Mode())

	if signedIn {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🔐 Signed in. %d synced tasks loaded.", len(sess.Tasks())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("👋 Signed out. Back to your device tasks (%d).", len(sess.Tasks())))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data
	log.Printf("[info] callback user=%d data=%s", cb.From.ID, data)

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		return b.completeTask(ctx, chatID, cb.From, strings.TrimPrefix(data, cbCompletePrefix))
	case strings.HasPrefix(data, cbReopenPrefix):
		return b.reopenTask(ctx, chatID, cb.From, strings.TrimPrefix(data, cbReopenPrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		return b.askDeleteConfirmation(ctx, chatID, cb.From, strings.TrimPrefix(data, cbDeletePrefix))
	case data == cbImportConfirm:
		return b.confirmImport(ctx, chatID, cb.From)
	case data == cbImportCancel:
		b.clearImport(cb.From.ID)
		return b.sendText(chatID, "Import cancelled.")
	default:
		return nil
	}
}

// SendWeeklyReviews pushes the weekly review to every signed-in user.
func (b *Bot) SendWeeklyReviews(ctx context.Context) error {
	users, err := b.users.ListSignedIn(ctx)
	if err != nil {
		return err
	}
	now := b.tasks.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reviewWorkers)
	for _, user := range users {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			text, err := b.reviews.WeeklySummaryFor(ctx, IdentityOf(user).UserID, now)
			if err != nil {
				log.Printf("build review for user %d: %v", user.TelegramID, err)
				return nil
			}
			if err := b.sendText(user.TelegramID, text); err != nil {
				log.Printf("send review to %d: %v", user.TelegramID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(ctx, msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, msg)
	case strings.ToLower(menuLabelReview):
		return true, b.handleReview(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.users.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

// session returns the user record and their live task session.
func (b *Bot) session(ctx context.Context, from *tgbotapi.User) (*model.User, *backend.Session, error) {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return nil, nil, err
	}
	sess, err := b.sessions.For(ctx, *user)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

func (b *Bot) wait(ctx context.Context, op *backend.Op) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	err := op.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return errStillSyncing
	}
	return err
}

func (b *Bot) now() time.Time {
	return b.tasks.Now()
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func (b *Bot) setImport(userID int64, p pendingImport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.imports[userID] = p
}

func (b *Bot) takeImport(userID int64) (pendingImport, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.imports[userID]
	delete(b.imports, userID)
	return p, ok
}

func (b *Bot) clearImport(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.imports, userID)
}
