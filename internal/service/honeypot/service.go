// Package honeypot is the session lifecycle manager: it owns the
// session table, serializes turns per session and runs each incoming
// message through detection, extraction, strategy and response.
package honeypot

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamyukt/honeynet/internal/analysis/detect"
	"github.com/teamyukt/honeynet/internal/analysis/extract"
	"github.com/teamyukt/honeynet/internal/config"
	"github.com/teamyukt/honeynet/internal/model/conversation"
	"github.com/teamyukt/honeynet/internal/model/intel"
	"github.com/teamyukt/honeynet/internal/model/persona"
	"github.com/teamyukt/honeynet/internal/service/engagement"
	"github.com/teamyukt/honeynet/internal/service/report"
	"github.com/teamyukt/honeynet/internal/service/responder"
)

const (
	emptyMessageReply   = "I'm here. What's the issue?"
	neutralReply        = "Okay, noted. Let me know if there is anything about my account."
	finalizedReply      = "I have to go now. I will check everything with my bank directly."
	maxRapport          = 10
	reportDispatchLimit = 30 * time.Second
)

// Result is what a processed turn hands back to the transport layer.
type Result struct {
	SessionID    string `json:"sessionId"`
	Reply        string `json:"reply"`
	ScamDetected bool   `json:"scamDetected"`
	ScamType     string `json:"scamType"`
	Finalized    bool   `json:"finalized"`
}

// Service coordinates all per-turn analysis. Turns for the same
// session run strictly one at a time; different sessions proceed in
// parallel.
//
// Sessions are never evicted, so memory grows with every adversary
// ever seen. Deployments that run for long need an eviction policy;
// the right TTL depends on how the upstream platform routes scammers
// and is deliberately not guessed here.
type Service struct {
	cfg        *config.Config
	detector   *detect.Detector
	extractor  *extract.Extractor
	selector   *engagement.Selector
	responder  *responder.Generator
	personas   persona.Store
	dispatcher *report.Dispatcher
	hub        *Hub
	log        *zap.Logger
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*conversation.Session

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewService wires the turn pipeline. dispatcher may be nil when
// reporting is disabled.
func NewService(cfg *config.Config, detector *detect.Detector, extractor *extract.Extractor, selector *engagement.Selector, gen *responder.Generator, personas persona.Store, dispatcher *report.Dispatcher, log *zap.Logger) *Service {
	return &Service{
		cfg:        cfg,
		detector:   detector,
		extractor:  extractor,
		selector:   selector,
		responder:  gen,
		personas:   personas,
		dispatcher: dispatcher,
		hub:        NewHub(),
		log:        log,
		now:        time.Now,
		sessions:   make(map[string]*conversation.Session),
		locks:      make(map[string]*sync.Mutex),
	}
}

// Hub exposes the turn event feed for watchers.
func (s *Service) Hub() *Hub {
	return s.hub
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// HandleMessage processes one adversary message end to end and
// returns the persona's reply.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (*Result, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess := s.getOrCreate(sessionID)

	if sess.State.Finalized {
		return &Result{
			SessionID:    sess.ID,
			Reply:        finalizedReply,
			ScamDetected: sess.ScamDetected,
			ScamType:     sess.ScamType,
			Finalized:    true,
		}, nil
	}

	if strings.TrimSpace(text) == "" {
		return &Result{
			SessionID:    sess.ID,
			Reply:        emptyMessageReply,
			ScamDetected: sess.ScamDetected,
			ScamType:     sess.ScamType,
		}, nil
	}

	now := s.now()
	sess.Append(conversation.Message{Sender: conversation.SenderAdversary, Text: text, Timestamp: now})

	verdict := s.detector.Detect(text)
	if verdict.Confidence > sess.Confidence {
		sess.Confidence = verdict.Confidence
	}
	if verdict.IsScam {
		sess.ScamDetected = true
		if sess.ScamType == "Unknown" || sess.ScamType == string(detect.CategoryGeneral) {
			sess.ScamType = string(verdict.Category)
		}
	}

	// once scam-classified the session stays engaged, even when a
	// single later message scores benign
	if !sess.ScamDetected {
		reply := neutralReply
		sess.Append(conversation.Message{Sender: conversation.SenderAgent, Text: reply, Timestamp: s.now()})
		return &Result{SessionID: sess.ID, Reply: reply, ScamType: sess.ScamType}, nil
	}

	reply, added := s.engage(ctx, sess, text)
	sess.Append(conversation.Message{Sender: conversation.SenderAgent, Text: reply, Timestamp: s.now()})

	finalizedNow := s.maybeFinalize(sess)

	s.hub.Publish(TurnEvent{
		SessionID:    sess.ID,
		Turn:         sess.State.TurnCount,
		Incoming:     text,
		Reply:        reply,
		ScamDetected: true,
		ScamType:     sess.ScamType,
		Stage:        sess.State.Stage.String(),
		NewEntities:  added,
		Finalized:    sess.State.Finalized,
		Timestamp:    now,
	})

	if finalizedNow {
		s.log.Info("session finalized",
			zap.String("session_id", sess.ID),
			zap.Int("scam_turns", sess.State.TurnCount),
			zap.Int("entities", sess.Ledger.Total()))
	}

	return &Result{
		SessionID:    sess.ID,
		Reply:        reply,
		ScamDetected: true,
		ScamType:     sess.ScamType,
		Finalized:    sess.State.Finalized,
	}, nil
}

// engage runs the scam-turn pipeline: state advance, extraction,
// agenda pruning, strategy selection and reply generation.
func (s *Service) engage(ctx context.Context, sess *conversation.Session, text string) (string, int) {
	state := sess.State
	state.TurnCount++
	state.AdvanceStage(s.selector.StageFor(state.TurnCount))
	if state.RapportLevel < maxRapport {
		state.RapportLevel++
	}

	responder.ObserveAdversary(&state.Adversary, text)

	history := sess.AdversaryTexts(s.cfg.Extraction.ContextWindow)
	if len(history) > 0 {
		history = history[:len(history)-1] // current message passed separately
	}
	extraction := s.extractor.ExtractWithContext(text, history)
	added := sess.Ledger.Merge(extraction)

	engagement.Prune(state, sess.Ledger)

	req := engagement.ClassifyRequest(text)
	strategy := s.selector.Select(state.TurnCount, sess.Ledger, state.Priorities, req)

	p := s.personas.Assign(sess.ID)
	reply := s.responder.Reply(ctx, sess, &p, strategy, req, text)
	return reply, added
}

// maybeFinalize checks the finalization rule and dispatches the report
// exactly once, off the turn path.
func (s *Service) maybeFinalize(sess *conversation.Session) bool {
	state := sess.State
	if state.Finalized {
		return false
	}

	enoughIntel := sess.Ledger.HasHighValue() && state.TurnCount >= s.cfg.Engagement.MinScamTurns
	exhausted := state.TurnCount >= s.cfg.Engagement.MaxScamTurns
	if !enoughIntel && !exhausted {
		return false
	}

	state.Finalized = true
	rep := s.buildReport(sess)

	if s.dispatcher != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), reportDispatchLimit)
			defer cancel()
			s.dispatcher.Dispatch(ctx, rep)
		}()
	}
	return true
}

func (s *Service) buildReport(sess *conversation.Session) *intel.Report {
	metrics := sess.Metrics()

	risk := detect.AssessMessage(strings.Join(sess.AdversaryTexts(len(sess.Messages)), " "))
	convFlags := detect.AssessConversation(sess.Messages)
	risk.Flags = append(risk.Flags, convFlags...)

	return &intel.Report{
		SessionID:              sess.ID,
		ScamDetected:           sess.ScamDetected,
		ScamType:               sess.ScamType,
		ConfidenceLevel:        sess.Confidence,
		TotalMessagesExchanged: metrics.TotalMessagesExchanged,
		ExtractedIntelligence:  sess.Ledger.Snapshot(),
		EngagementMetrics:      metrics,
		AgentNotes:             intel.Notes(sess.ScamDetected, sess.ScamType, sess.Confidence, sess.Ledger, metrics, risk.Summary()),
		FinalizedAt:            s.now(),
	}
}

// Finalize builds the report for a session on demand, regardless of
// whether the finalization rule has fired. Used by the inspection API.
func (s *Service) Finalize(sessionID string) (*intel.Report, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return s.buildReport(sess), true
}

// Get returns a copy of the session by id. Returning a copy keeps
// callers from observing a transcript or ledger mid-turn.
func (s *Service) Get(sessionID string) (*conversation.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return sess.Clone(), true
}

// SessionSummary is the listing view of one session.
type SessionSummary struct {
	SessionID    string    `json:"sessionId"`
	PersonaID    string    `json:"personaId"`
	Messages     int       `json:"messages"`
	ScamDetected bool      `json:"scamDetected"`
	ScamType     string    `json:"scamType"`
	Confidence   float64   `json:"confidenceLevel"`
	Entities     int       `json:"extractedEntities"`
	Finalized    bool      `json:"finalized"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// List returns summaries of all sessions, newest first. Each summary
// is built under the session's turn lock so an in-flight turn and a
// listing never touch the same ledger concurrently.
func (s *Service) List() []SessionSummary {
	s.mu.RLock()
	live := make([]*conversation.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.RUnlock()

	out := make([]SessionSummary, 0, len(live))
	for _, sess := range live {
		lock := s.sessionLock(sess.ID)
		lock.Lock()
		out = append(out, SessionSummary{
			SessionID:    sess.ID,
			PersonaID:    sess.PersonaID,
			Messages:     len(sess.Messages),
			ScamDetected: sess.ScamDetected,
			ScamType:     sess.ScamType,
			Confidence:   sess.Confidence,
			Entities:     sess.Ledger.Total(),
			Finalized:    sess.State.Finalized,
			CreatedAt:    sess.CreatedAt,
			LastActivity: sess.LastActivity,
		})
		lock.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

func (s *Service) getOrCreate(sessionID string) *conversation.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	p := s.personas.Assign(sessionID)
	sess := conversation.NewSession(sessionID, p.ID, s.now())
	s.sessions[sessionID] = sess
	s.log.Info("session created",
		zap.String("session_id", sessionID),
		zap.String("persona", p.ID))
	return sess
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}
