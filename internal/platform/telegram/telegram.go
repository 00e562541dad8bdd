package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/beaconlabs/beacon/internal/config"
	"github.com/beaconlabs/beacon/internal/pkg/logs"
	"github.com/beaconlabs/beacon/internal/platform"
)

var _ platform.Channel = (*Telegram)(nil)

type Telegram struct {
	id          string
	config      Config
	bot         *bot.Bot
	botUsername string
	handler     func(ctx context.Context, msg *platform.Message) error
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewChannel(chanID string, chCfg *config.ChannelConfig) (platform.Channel, error) {
	cfg, err := ParseConfig(chCfg.Config)
	if err != nil {
		return nil, fmt.Errorf("parse telegram config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	tg := &Telegram{
		id:     chanID,
		config: *cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(tg.handleUpdate),
	}

	tgBot, err := bot.New(cfg.Token, opts...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	tg.bot = tgBot

	me, err := tgBot.GetMe(ctx)
	if err != nil {
		logs.Warn("[platform:telegram] GetMe failed: %v", err)
	} else {
		tg.botUsername = me.Username
		logs.Info("[platform:telegram] bot identity: @%s (id=%d)", me.Username, me.ID)
	}

	return tg, nil
}

func (c *Telegram) ID() string {
	return c.id
}

func (c *Telegram) Type() platform.Type {
	return platform.Telegram
}

func (c *Telegram) Start(ctx context.Context) error {
	c.bot.Start(ctx)
	return nil
}

func (c *Telegram) Stop(ctx context.Context) error {
	c.cancel()
	if c.bot != nil {
		c.bot.Close(ctx)
	}
	return nil
}

func (c *Telegram) SendMessage(ctx context.Context, chatID string, content string) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	_, err = c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatIDInt,
		Text:   content,
	})
	return err
}

// Member resolves a chat member for permission checks. Telegram has no role
// system, so HasRole matches an administrator's custom title against the
// configured admin role.
func (c *Telegram) Member(ctx context.Context, communityID string, userID string) (platform.Member, error) {
	chatIDInt, err := strconv.ParseInt(communityID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID: %w", err)
	}
	userIDInt, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	cm, err := c.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatIDInt,
		UserID: userIDInt,
	})
	if err != nil {
		return nil, fmt.Errorf("get chat member: %w", err)
	}
	if cm == nil {
		return nil, platform.ErrMemberNotFound
	}

	return &member{cm: cm}, nil
}

type member struct {
	cm *models.ChatMember
}

func (m *member) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	if m.cm.Administrator != nil && m.cm.Administrator.CustomTitle == roleID {
		return true
	}
	if m.cm.Owner != nil && m.cm.Owner.CustomTitle == roleID {
		return true
	}
	return false
}

func (m *member) IsAdministrator() bool {
	return m.cm.Type == models.ChatMemberTypeAdministrator ||
		m.cm.Type == models.ChatMemberTypeOwner
}

func (m *member) IsOwner() bool {
	return m.cm.Type == models.ChatMemberTypeOwner
}

func (c *Telegram) RegisterMessageHandler(handler func(ctx context.Context, msg *platform.Message) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	c.handler = handler
	return nil
}

// handleUpdate normalizes incoming Telegram updates into platform messages.
// Group and supergroup chats map to communities; private chats become direct
// messages.
func (c *Telegram) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()
	if handler == nil {
		return
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	direct := msg.Chat.Type == "private"

	normalized := &platform.Message{
		ID:          strconv.Itoa(msg.ID),
		ChannelID:   c.id,
		ChannelType: platform.Telegram,
		UserID:      strconv.FormatInt(msg.From.ID, 10),
		ChatID:      chatID,
		Content:     msg.Text,
		Direct:      direct,
	}
	if !direct {
		normalized.CommunityID = chatID
	}

	ctx = logs.SetLogID(ctx, logs.NewLogID())
	if err := handler(ctx, normalized); err != nil {
		logs.CtxWarn(ctx, "[platform:telegram] handle message failed: %v", err)
	}
}
