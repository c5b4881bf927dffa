package chat

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/db"
	svcErr "github.com/oggyb/spark-match/internal/errors"
	"github.com/oggyb/spark-match/internal/realtime"
	"github.com/oggyb/spark-match/internal/repository"
	"github.com/oggyb/spark-match/internal/utils/pair"
)

const (
	DefaultLimit = 200
	MaxLimit     = 500

	unknownSender = "Unknown"
	// createdAt is rendered like JavaScript's Date.toISOString.
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

// Service is the chat store: one session per match, an append-only log.
// Only the two participants of a match may read or write its chat.
type Service struct {
	appCtx  *app.AppContext
	log     *slog.Logger
	matches *repository.MatchRepository
	chats   *repository.ChatRepository
	now     func() time.Time
}

// NewChatService creates a new chat store with dependencies from AppContext.
func NewChatService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		log:     appCtx.Logger.With("service", "ChatService"),
		matches: repository.NewMatchRepository(appCtx.DB),
		chats:   repository.NewChatRepository(appCtx.DB),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Sender is the display name the broadcast layer attached to a message.
type Sender struct {
	Name string `json:"name"`
}

// IncomingMessage is one message as relayed by the client.
type IncomingMessage struct {
	Content   string  `json:"content"`
	CreatedAt string  `json:"createdAt"`
	User      *Sender `json:"user"`
}

// Message is one stored message as returned to clients.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	User      Sender `json:"user"`
	CreatedAt string `json:"createdAt"`
}

// AppendMessages stores msgs in the chat of matchID and returns how many
// rows were created.
//
// Behavior:
//   - Missing match → NotFound; caller not a participant → Forbidden.
//   - The chat session is created on first use.
//   - Messages sharing (content, createdAt) within this call collapse to one.
//     Nothing is deduplicated across calls.
//   - The sender is the participant whose name equals user.name. When the
//     name is missing, unknown, or shared by both participants, the caller
//     is the sender. This is best effort: names are not identities.
//   - createdAt is used when it is an RFC 3339 instant, otherwise the write time.
//
// Session bootstrap and inserts run in one transaction.
func (s *Service) AppendMessages(ctx context.Context, matchID, callerID uint64, msgs []IncomingMessage) (int, error) {
	s.log.Debug("AppendMessages called", "match_id", matchID, "caller", callerID, "count", len(msgs))

	if len(msgs) == 0 {
		return 0, svcErr.InvalidArgument("messages array is required")
	}

	var (
		created int
		chatID  uint64
	)
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.participantMatch(ctx, s.matches.WithTx(tx), matchID, callerID)
		if err != nil {
			return err
		}
		session, err := s.chats.WithTx(tx).GetOrCreateSession(ctx, m.ID)
		if err != nil {
			return err
		}
		chatID = session.ID

		rows := s.buildRows(session.ID, m, callerID, msgs)
		if err := s.chats.WithTx(tx).InsertMessages(ctx, rows); err != nil {
			return err
		}
		created = len(rows)
		return nil
	})
	if err != nil {
		s.logFailure("AppendMessages", matchID, err)
		return 0, svcErr.Map(err)
	}

	if created > 0 {
		realtime.PublishBestEffort(ctx, s.appCtx.Events, s.log, realtime.Event{
			Type:    realtime.EventChatMessages,
			MatchID: matchID,
			Payload: map[string]any{"chatId": chatID, "created": created, "senderId": callerID},
		})
	}
	return created, nil
}

// ListMessages returns up to limit messages of matchID's chat, oldest first.
//
// Behavior:
//   - Same authorization as AppendMessages; the session is created on first use.
//   - limit is clamped to [1, MaxLimit]. Callers pass DefaultLimit when
//     the client did not ask for a size.
//   - Senders that are no longer a named participant show as "Unknown".
func (s *Service) ListMessages(ctx context.Context, matchID, callerID uint64, limit int) ([]Message, error) {
	s.log.Debug("ListMessages called", "match_id", matchID, "caller", callerID, "limit", limit)

	switch {
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}

	m, err := s.participantMatch(ctx, s.matches, matchID, callerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	session, err := s.chats.GetOrCreateSession(ctx, m.ID)
	if err != nil {
		s.logFailure("ListMessages", matchID, err)
		return nil, svcErr.Map(err)
	}
	rows, err := s.chats.ListMessages(ctx, session.ID, limit)
	if err != nil {
		s.logFailure("ListMessages", matchID, err)
		return nil, svcErr.Map(err)
	}

	names := map[uint64]string{}
	for _, u := range []*db.User{m.UserA, m.UserB} {
		if u != nil && u.Name != "" {
			names[u.ID] = u.Name
		}
	}

	out := make([]Message, 0, len(rows))
	for _, r := range rows {
		name, ok := names[r.SenderID]
		if !ok {
			name = unknownSender
		}
		out = append(out, Message{
			ID:        strconv.FormatUint(r.ID, 10),
			Content:   r.Content,
			User:      Sender{Name: name},
			CreatedAt: r.SentAt.UTC().Format(isoMillis),
		})
	}
	return out, nil
}

// participantMatch loads the match with both users and checks the caller
// takes part in it.
func (s *Service) participantMatch(ctx context.Context, repo *repository.MatchRepository, matchID, callerID uint64) (*db.Match, error) {
	m, err := repo.GetWithUsers(ctx, matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("Match not found")
	}
	if err != nil {
		return nil, err
	}
	if !pair.Contains(m.UserAID, m.UserBID, callerID) {
		return nil, svcErr.Forbidden("Forbidden")
	}
	return m, nil
}

func (s *Service) buildRows(chatID uint64, m *db.Match, callerID uint64, msgs []IncomingMessage) []db.ChatMessage {
	seen := make(map[string]struct{}, len(msgs))
	rows := make([]db.ChatMessage, 0, len(msgs))
	for _, in := range msgs {
		key := in.Content + "::" + in.CreatedAt
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		rows = append(rows, db.ChatMessage{
			ChatID:   chatID,
			SenderID: resolveSender(in.User, m, callerID),
			Content:  in.Content,
			SentAt:   s.sentAt(in.CreatedAt),
		})
	}
	return rows
}

func (s *Service) sentAt(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw)); err == nil {
		return t.UTC()
	}
	return s.now()
}

func resolveSender(from *Sender, m *db.Match, callerID uint64) uint64 {
	if from == nil {
		return callerID
	}
	name := strings.TrimSpace(from.Name)
	if name == "" {
		return callerID
	}
	isA := m.UserA != nil && m.UserA.Name == name
	isB := m.UserB != nil && m.UserB.Name == name
	switch {
	case isA && isB:
		return callerID
	case isA:
		return m.UserAID
	case isB:
		return m.UserBID
	default:
		return callerID
	}
}

func (s *Service) logFailure(op string, matchID uint64, err error) {
	var e *svcErr.Error
	if errors.As(err, &e) && e.Kind != svcErr.KindInternal {
		return
	}
	s.log.Error(op+" failed", "match_id", matchID, "err", err)
}
