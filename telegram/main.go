// Package telegram runs the interview flows as a Telegram bot. Conversation history is kept
// per chat in memory; a restart drops every open session.
package telegram

import (
	"context"
	"errors"
	"fmt"

	"mockinterview/interview"
	"mockinterview/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	commandStart  = "start"
	commandMentor = "mentor"
	commandReset  = "reset"

	callbackMentor = "mentor"
)

// botAPI is the part of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// UserDirectory resolves a Telegram account to the linked user profile.
type UserDirectory interface {
	UserProfileByTelegramID(ctx context.Context, telegramUserID int64) (*interview.UserProfile, error)
}

type Sessions interface {
	Start(ctx context.Context, user interview.UserProfile) (*interview.StartResult, error)
	InterviewerTurn(ctx context.Context, user interview.UserProfile, answer string, history []interview.Turn) (*interview.InterviewerReply, error)
	MentorTurn(ctx context.Context, question, answer string, history []interview.Turn) (*interview.MentorFeedback, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type TelegramConnectProps struct {
	Logger   *logger.LogMiddleware
	Token    string
	Debug    bool
	Users    UserDirectory
	Sessions Sessions
	// Transcriber is optional; without it voice answers are rejected.
	Transcriber Transcriber
}

type Telegram struct {
	logger      *logger.LogMiddleware
	bot         botAPI
	users       UserDirectory
	sessions    Sessions
	transcriber Transcriber
	chats       *chatStore
}

func Connect(ctx context.Context, args TelegramConnectProps) (*Telegram, error) {
	tracer := otel.Tracer("telegram/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	if args.Token == "" {
		return nil, errors.New("telegram bot token is empty")
	}

	bot, err := tgbotapi.NewBotAPI(args.Token)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = args.Debug

	span.SetAttributes(
		attribute.String("bot.username", bot.Self.UserName),
		attribute.Bool("bot.debug", args.Debug),
	)

	args.Logger.Logger(ctx).Info("[Telegram] Bot connected successfully",
		zap.String("username", bot.Self.UserName),
		zap.Bool("debug", args.Debug),
	)

	return newTelegram(args, bot), nil
}

func newTelegram(args TelegramConnectProps, bot botAPI) *Telegram {
	return &Telegram{
		logger:      args.Logger,
		bot:         bot,
		users:       args.Users,
		sessions:    args.Sessions,
		transcriber: args.Transcriber,
		chats:       newChatStore(),
	}
}

// Listen handles updates one at a time until ctx is cancelled.
func (t *Telegram) Listen(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	t.logger.Logger(ctx).Info("[Telegram] Starting message listener")

	for {
		select {
		case <-ctx.Done():
			t.logger.Logger(ctx).Info("[Telegram] Shutting down listener")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	tracer := otel.Tracer("telegram/handleUpdate")
	ctx, span := tracer.Start(ctx, "handleUpdate")
	defer span.End()

	switch {
	case update.Message != nil:
		t.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		t.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (t *Telegram) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	tracer := otel.Tracer("telegram/handleMessage")
	ctx, span := tracer.Start(ctx, "handleMessage")
	defer span.End()

	if message.From == nil || message.Chat == nil {
		return
	}

	chatID := message.Chat.ID
	span.SetAttributes(
		attribute.Int64("user.id", message.From.ID),
		attribute.Int64("chat.id", chatID),
		attribute.String("message.type", messageType(message)),
	)

	t.logger.Logger(ctx).Info("[Telegram] Received message",
		zap.Int64("user_id", message.From.ID),
		zap.String("username", message.From.UserName),
		zap.String("type", messageType(message)),
	)

	if message.IsCommand() {
		switch message.Command() {
		case commandStart:
			t.startInterview(ctx, chatID, message.From.ID)
		case commandMentor:
			t.mentorFeedback(ctx, chatID)
		case commandReset:
			t.chats.reset(chatID)
			t.sendText(ctx, chatID, msgReset)
		default:
			t.sendText(ctx, chatID, msgHelp)
		}
		return
	}

	switch {
	case message.Voice != nil:
		t.voiceAnswer(ctx, chatID, message.From.ID, message.Voice.FileID)
	case message.Text != "":
		t.answer(ctx, chatID, message.From.ID, message.Text)
	}
}

func (t *Telegram) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	tracer := otel.Tracer("telegram/handleCallbackQuery")
	ctx, span := tracer.Start(ctx, "handleCallbackQuery")
	defer span.End()

	if query.From == nil {
		return
	}

	span.SetAttributes(
		attribute.Int64("user.id", query.From.ID),
		attribute.String("callback.data", query.Data),
	)

	t.logger.Logger(ctx).Info("[Telegram] Received callback query",
		zap.Int64("user_id", query.From.ID),
		zap.String("data", query.Data),
	)

	if _, err := t.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		t.logger.Logger(ctx).Warn("[Telegram] Failed to acknowledge callback", zap.Error(err))
	}

	if query.Data == callbackMentor && query.Message != nil && query.Message.Chat != nil {
		t.mentorFeedback(ctx, query.Message.Chat.ID)
	}
}

func (t *Telegram) startInterview(ctx context.Context, chatID, telegramUserID int64) {
	user, ok := t.lookupUser(ctx, chatID, telegramUserID)
	if !ok {
		return
	}

	t.typing(ctx, chatID)
	result, err := t.sessions.Start(ctx, *user)
	if err != nil {
		t.reportError(ctx, chatID, err)
		return
	}

	t.chats.begin(chatID, result.Message)
	t.sendQuestion(ctx, chatID, result.Message, result.Audio)
}

func (t *Telegram) answer(ctx context.Context, chatID, telegramUserID int64, answer string) {
	history, ok := t.chats.history(chatID)
	if !ok {
		t.sendText(ctx, chatID, msgNotStarted)
		return
	}
	if err := validateAnswer(answer); err != nil {
		t.sendText(ctx, chatID, userMessage(err))
		return
	}

	user, ok := t.lookupUser(ctx, chatID, telegramUserID)
	if !ok {
		return
	}

	t.typing(ctx, chatID)
	reply, err := t.sessions.InterviewerTurn(ctx, *user, answer, history)
	if err != nil {
		t.reportError(ctx, chatID, err)
		return
	}

	t.chats.record(chatID, answer, reply.Message)
	t.sendQuestion(ctx, chatID, reply.Message, reply.Audio)
}

func (t *Telegram) voiceAnswer(ctx context.Context, chatID, telegramUserID int64, fileID string) {
	if t.transcriber == nil {
		t.sendText(ctx, chatID, msgVoiceUnsupported)
		return
	}
	if _, ok := t.chats.history(chatID); !ok {
		t.sendText(ctx, chatID, msgNotStarted)
		return
	}

	audio, err := t.downloadFile(ctx, fileID)
	if err != nil {
		t.reportError(ctx, chatID, err)
		return
	}

	text, err := t.transcriber.Transcribe(ctx, audio)
	if err != nil {
		t.reportError(ctx, chatID, &transcriptionError{err: err})
		return
	}
	if text == "" {
		t.sendText(ctx, chatID, msgEmptyTranscript)
		return
	}

	t.sendText(ctx, chatID, "🗣 "+text)
	t.answer(ctx, chatID, telegramUserID, text)
}

func (t *Telegram) mentorFeedback(ctx context.Context, chatID int64) {
	question, answer, history, ok := t.chats.lastExchange(chatID)
	if !ok {
		t.sendText(ctx, chatID, msgNothingToReview)
		return
	}

	t.typing(ctx, chatID)
	feedback, err := t.sessions.MentorTurn(ctx, question, answer, history)
	if err != nil {
		t.reportError(ctx, chatID, err)
		return
	}
	t.sendText(ctx, chatID, formatFeedback(feedback))
}

func (t *Telegram) lookupUser(ctx context.Context, chatID, telegramUserID int64) (*interview.UserProfile, bool) {
	user, err := t.users.UserProfileByTelegramID(ctx, telegramUserID)
	if err != nil {
		t.reportError(ctx, chatID, err)
		return nil, false
	}
	return user, true
}

func (t *Telegram) sendQuestion(ctx context.Context, chatID int64, text, audioURI string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("멘토 피드백 받기", callbackMentor)),
	)
	t.send(ctx, msg)

	audio, err := decodeAudio(audioURI)
	if err != nil {
		t.logger.Logger(ctx).Error("[Telegram] Could not decode question audio", zap.Error(err))
		return
	}
	t.send(ctx, tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: "question.mp3", Bytes: audio}))
}

func (t *Telegram) sendText(ctx context.Context, chatID int64, text string) {
	t.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (t *Telegram) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := t.bot.Send(c); err != nil {
		t.logger.Logger(ctx).Error("[Telegram] Failed to send message", zap.Error(err))
	}
}

func (t *Telegram) typing(ctx context.Context, chatID int64) {
	if _, err := t.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		t.logger.Logger(ctx).Debug("[Telegram] Failed to send chat action", zap.Error(err))
	}
}

func (t *Telegram) reportError(ctx context.Context, chatID int64, err error) {
	t.logger.Logger(ctx).Error("[Telegram] Request failed", zap.Error(err), zap.Int64("chat_id", chatID))
	t.sendText(ctx, chatID, userMessage(err))
}

func messageType(message *tgbotapi.Message) string {
	switch {
	case message.IsCommand():
		return "command"
	case message.Voice != nil:
		return "voice"
	default:
		return "text"
	}
}
