package chat

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/agendafacil/agenda-service/internal/observability/metrics"
	"github.com/agendafacil/agenda-service/internal/slot"
	"github.com/agendafacil/agenda-service/pkg/logging"
)

// Reply is what the robot sends back. Options is set only when presenting
// the slot list, one formatted "DD/MM/YYYY HH:MM" entry per open slot.
type Reply struct {
	Text    string
	Options []string
}

// Engine drives one patient through the scripted booking dialogue. State is
// owned per session; handling of messages for the same session is serialized
// through striped locks so a session's state never sees concurrent mutation.
type Engine struct {
	store      slot.Store
	sessions   SessionStore
	windowDays int
	logger     *logging.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	locks [64]sync.Mutex
}

func NewEngine(store slot.Store, sessions SessionStore, windowDays int, logger *logging.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	if windowDays <= 0 {
		windowDays = 14
	}
	return &Engine{
		store:      store,
		sessions:   sessions,
		windowDays: windowDays,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &e.locks[h.Sum32()%uint32(len(e.locks))]
}

// Handle processes one inbound message for the given session and returns the
// robot's reply. Parsing and validation failures re-prompt within the same
// stage; only store failures surface as errors.
func (e *Engine) Handle(ctx context.Context, sessionID, message string) (Reply, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	st, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("load conversation state: %w", err)
	}
	if st == nil {
		st = NewState()
	}

	e.metrics.ObserveMessage(string(st.Stage))

	lower := strings.ToLower(strings.TrimSpace(message))

	// Global intercepts take priority over any stage logic.
	if ClassifyIntent(lower) == IntentRestart {
		if err := e.sessions.Delete(ctx, sessionID); err != nil {
			return Reply{}, err
		}
		return Reply{Text: replyRestarted}, nil
	}
	if IsAbandon(lower) {
		if err := e.sessions.Delete(ctx, sessionID); err != nil {
			return Reply{}, err
		}
		return Reply{Text: replyAbandoned}, nil
	}

	switch st.Stage {
	case StageStart:
		return e.handleStart(ctx, sessionID, st, lower)
	case StageCollectingName:
		return e.handleCollectingName(ctx, sessionID, st, message, lower)
	case StageCollectingPhone:
		return e.handleCollectingPhone(ctx, sessionID, st, message)
	case StageChoosingSlot:
		return e.handleChoosingSlot(ctx, sessionID, st, lower)
	case StageChoosingModality:
		return e.handleChoosingModality(ctx, sessionID, st, lower)
	case StageConfirming:
		return e.handleConfirming(ctx, sessionID, st, lower)
	default:
		// Unknown persisted stage, start over.
		if err := e.sessions.Delete(ctx, sessionID); err != nil {
			return Reply{}, err
		}
		return Reply{Text: replyHelp}, nil
	}
}

func (e *Engine) save(ctx context.Context, sessionID string, st *State) error {
	if err := e.sessions.Put(ctx, sessionID, st); err != nil {
		return fmt.Errorf("save conversation state: %w", err)
	}
	return nil
}

func (e *Engine) window() (from, to time.Time) {
	now := e.now()
	return now, now.AddDate(0, 0, e.windowDays)
}

func (e *Engine) handleStart(ctx context.Context, sessionID string, st *State, lower string) (Reply, error) {
	var prefix string
	if !st.Greeted {
		st.Greeted = true
		prefix = replyGreeting + "\n\n"
	}

	reply := func(text string) (Reply, error) {
		if err := e.save(ctx, sessionID, st); err != nil {
			return Reply{}, err
		}
		return Reply{Text: prefix + text}, nil
	}

	switch ClassifyIntent(lower) {
	case IntentPrice:
		return reply(replyPrice)
	case IntentLocation:
		return reply(replyLocation)
	case IntentInsurance:
		return reply(replyInsurance)
	case IntentAvailability:
		from, to := e.window()
		open, err := e.store.ListAvailable(ctx, from, to)
		if err != nil {
			return Reply{}, fmt.Errorf("list available slots: %w", err)
		}
		if len(open) == 0 {
			return reply(replyNoAvailability)
		}
		return reply(renderSlotList(open, ""))
	case IntentBooking:
		st.Stage = StageCollectingName
		return reply(replyAskName)
	case IntentDecline:
		return reply(replyGoodbyeStart)
	default:
		return reply(replyHelp)
	}
}

func (e *Engine) handleCollectingName(ctx context.Context, sessionID string, st *State, raw, lower string) (Reply, error) {
	// Administrative questions are answered inline without consuming the
	// message as a name.
	if ContainsReservedKeyword(lower) {
		switch ClassifyIntent(lower) {
		case IntentPrice:
			return Reply{Text: replyPrice}, nil
		case IntentLocation:
			return Reply{Text: replyLocation}, nil
		case IntentInsurance:
			return Reply{Text: replyInsurance}, nil
		case IntentAvailability:
			from, to := e.window()
			open, err := e.store.ListAvailable(ctx, from, to)
			if err != nil {
				return Reply{}, fmt.Errorf("list available slots: %w", err)
			}
			if len(open) == 0 {
				return Reply{Text: replyNoAvailability}, nil
			}
			return Reply{Text: renderSlotList(open, "")}, nil
		default:
			return Reply{Text: replyAskNameAgain}, nil
		}
	}

	if !ValidName(raw) {
		return Reply{Text: replyAskNameAgain}, nil
	}

	st.Name = strings.TrimSpace(raw) // original casing preserved
	st.Stage = StageCollectingPhone
	if err := e.save(ctx, sessionID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf(replyAskPhone, st.Name)}, nil
}

func (e *Engine) handleCollectingPhone(ctx context.Context, sessionID string, st *State, raw string) (Reply, error) {
	phone, ok := NormalizePhone(raw)
	if !ok {
		return Reply{Text: replyAskPhoneAgain}, nil
	}

	st.Phone = phone

	from, to := e.window()
	open, err := e.store.ListAvailable(ctx, from, to)
	if err != nil {
		return Reply{}, fmt.Errorf("list available slots: %w", err)
	}
	if len(open) == 0 {
		if err := e.sessions.Delete(ctx, sessionID); err != nil {
			return Reply{}, err
		}
		return Reply{Text: replyNoAvailability}, nil
	}

	st.Stage = StageChoosingSlot
	if err := e.save(ctx, sessionID, st); err != nil {
		return Reply{}, err
	}

	options := make([]string, len(open))
	for i, s := range open {
		options[i] = s.Label()
	}
	return Reply{Text: renderSlotList(open, replySlotListFooter), Options: options}, nil
}

func (e *Engine) handleChoosingSlot(ctx context.Context, sessionID string, st *State, lower string) (Reply, error) {
	at, err := ParseSlotTime(lower, e.now())
	if err != nil {
		return Reply{Text: replyBadDateTime}, nil
	}

	st.ChosenAt = at
	st.Stage = StageChoosingModality
	if err := e.save(ctx, sessionID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: replyAskModality}, nil
}

func (e *Engine) handleChoosingModality(ctx context.Context, sessionID string, st *State, lower string) (Reply, error) {
	switch {
	case strings.Contains(lower, "presencial"):
		st.Modality = slot.ModalityInPerson
	case strings.Contains(lower, "online"):
		st.Modality = slot.ModalityOnline
	default:
		return Reply{Text: replyAskModalityAgain}, nil
	}

	st.Stage = StageConfirming
	if err := e.save(ctx, sessionID, st); err != nil {
		return Reply{}, err
	}

	summary := fmt.Sprintf(replyConfirmSummary,
		st.ChosenAt.Format("02/01/2006"),
		st.ChosenAt.Format("15:04"),
		st.Name,
		st.Phone,
		modalityLabel(st.Modality),
	)
	return Reply{Text: summary}, nil
}

func (e *Engine) handleConfirming(ctx context.Context, sessionID string, st *State, lower string) (Reply, error) {
	if !IsAffirmative(lower) {
		if err := e.sessions.Delete(ctx, sessionID); err != nil {
			return Reply{}, err
		}
		return Reply{Text: replyDeclined}, nil
	}

	claimed, err := e.store.Claim(ctx, st.ChosenAt, st.Name, st.Phone, st.Modality)
	if err != nil {
		// Store failure: keep state so the patient can resend "sim".
		return Reply{}, fmt.Errorf("claim slot: %w", err)
	}

	if err := e.sessions.Delete(ctx, sessionID); err != nil {
		return Reply{}, err
	}

	if !claimed {
		e.metrics.ObserveClaim("lost")
		e.logger.Info("slot claim lost", "session_id", sessionID, "scheduled_at", st.ChosenAt)
		return Reply{Text: replySlotTaken}, nil
	}

	e.metrics.ObserveClaim("won")
	e.logger.Info("slot claimed", "session_id", sessionID, "scheduled_at", st.ChosenAt, "modality", string(st.Modality))
	return Reply{Text: replyBookingConfirmed}, nil
}

func renderSlotList(open []slot.Slot, footer string) string {
	var b strings.Builder
	b.WriteString(replySlotListHeader)
	for _, s := range open {
		b.WriteString("\n- ")
		b.WriteString(s.ScheduledAt.Format("02/01/2006"))
		b.WriteString(" às ")
		b.WriteString(s.ScheduledAt.Format("15:04"))
	}
	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(footer)
	}
	return b.String()
}

func modalityLabel(m slot.Modality) string {
	if m == slot.ModalityOnline {
		return "Online"
	}
	return "Presencial"
}
