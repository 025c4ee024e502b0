package honeypot

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/teamyukt/honeynet/internal/analysis/detect"
	"github.com/teamyukt/honeynet/internal/analysis/extract"
	"github.com/teamyukt/honeynet/internal/config"
	"github.com/teamyukt/honeynet/internal/model/intel"
	"github.com/teamyukt/honeynet/internal/model/persona"
	"github.com/teamyukt/honeynet/internal/service/engagement"
	"github.com/teamyukt/honeynet/internal/service/responder"
)

func testConfig() *config.Config {
	return &config.Config{
		Detection: config.DetectionConfig{
			Threshold: 0.35,
			Weights: config.DetectionWeights{
				Keywords:      0.25,
				Tactics:       0.25,
				Composite:     0.20,
				Credentials:   0.15,
				Impersonation: 0.15,
			},
		},
		Extraction: config.ExtractionConfig{
			ProviderSuffixes: []string{"paytm", "phonepe", "upi", "ybl"},
			ShortenerDomains: []string{"bit.ly"},
			LinkTLDs:         []string{"com", "in"},
			ContextWindow:    5,
		},
		Engagement: config.EngagementConfig{
			StageCautiousAfter:    2,
			StageQuestioningAfter: 4,
			StageSkepticalAfter:   6,
			StageDefensiveAfter:   8,
			MinScamTurns:          6,
			MaxScamTurns:          10,
			HistoryWindow:         5,
		},
	}
}

func testService() *Service {
	cfg := testConfig()
	return NewService(
		cfg,
		detect.New(cfg.Detection),
		extract.New(cfg.Extraction, nil),
		engagement.NewSelector(cfg.Engagement),
		responder.NewGenerator(nil, rand.New(rand.NewSource(99)), cfg.Engagement.HistoryWindow, zap.NewNop()),
		persona.NewMemoryStore(persona.Seed()),
		nil,
		zap.NewNop(),
	)
}

func TestHandleMessageAssignsSessionID(t *testing.T) {
	svc := testService()
	result, err := svc.HandleMessage(context.Background(), "", "hello there")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
}

func TestHandleMessageBenignLeavesStateUntouched(t *testing.T) {
	svc := testService()
	result, err := svc.HandleMessage(context.Background(), "s1", "Can we schedule a meeting tomorrow?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ScamDetected {
		t.Fatal("benign message flagged as scam")
	}

	sess, ok := svc.Get("s1")
	if !ok {
		t.Fatal("session not created")
	}
	if sess.State.TurnCount != 0 {
		t.Fatalf("benign turn incremented scam count to %d", sess.State.TurnCount)
	}
	if sess.Ledger.Total() != 0 {
		t.Fatalf("benign turn added ledger entries: %d", sess.Ledger.Total())
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected message and reply in transcript, got %d", len(sess.Messages))
	}
}

func TestHandleMessageEmptyFastPath(t *testing.T) {
	svc := testService()
	result, err := svc.HandleMessage(context.Background(), "s1", "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply != emptyMessageReply {
		t.Fatalf("unexpected empty-message reply: %q", result.Reply)
	}

	sess, _ := svc.Get("s1")
	if len(sess.Messages) != 0 {
		t.Fatal("empty message must not enter the transcript")
	}
}

func TestScamTurnExtractsAndEngages(t *testing.T) {
	svc := testService()
	msg := "URGENT: your bank account will be blocked! Call 9876543210 and share your OTP immediately."

	result, err := svc.HandleMessage(context.Background(), "s1", msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.ScamDetected {
		t.Fatal("expected scam classification")
	}
	if result.Reply == "" {
		t.Fatal("expected an engagement reply")
	}

	sess, _ := svc.Get("s1")
	if sess.State.TurnCount != 1 {
		t.Fatalf("expected turn count 1, got %d", sess.State.TurnCount)
	}
	if got := sess.Ledger.Get(intel.TypePhone); len(got) != 1 || got[0] != "9876543210" {
		t.Fatalf("phone not captured, got %v", got)
	}
	if sess.ScamType != string(detect.CategoryBanking) {
		t.Fatalf("expected banking scam type, got %s", sess.ScamType)
	}
}

func TestScamClassificationIsSticky(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	if _, err := svc.HandleMessage(ctx, "s1", "Your account is blocked, verify your OTP immediately!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.HandleMessage(ctx, "s1", "ok waiting"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess, _ := svc.Get("s1")
	if sess.State.TurnCount != 2 {
		t.Fatalf("benign-scoring follow-up must still count as a scam turn, got %d", sess.State.TurnCount)
	}
}

func TestSessionFinalizesWithinBudget(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	finalizedAt := 0
	for i := 1; i <= 12; i++ {
		msg := fmt.Sprintf("Turn %d: urgent, your account is blocked, share OTP now or pay the penalty!", i)
		result, err := svc.HandleMessage(ctx, "s1", msg)
		if err != nil {
			t.Fatalf("turn %d: unexpected error: %v", i, err)
		}
		if result.Finalized && finalizedAt == 0 {
			finalizedAt = i
		}
	}

	if finalizedAt == 0 {
		t.Fatal("session never finalized")
	}
	if finalizedAt > 10 {
		t.Fatalf("finalization past the turn budget: turn %d", finalizedAt)
	}

	sess, _ := svc.Get("s1")
	if !sess.State.Finalized {
		t.Fatal("state not marked finalized")
	}
}

func TestFinalizesEarlyWithHighValueIntel(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	var finalizedAt int
	for i := 1; i <= 10; i++ {
		msg := fmt.Sprintf("Turn %d: account blocked, send fee to scammer@paytm immediately, urgent!", i)
		result, err := svc.HandleMessage(ctx, "s1", msg)
		if err != nil {
			t.Fatalf("turn %d: unexpected error: %v", i, err)
		}
		if result.Finalized {
			finalizedAt = i
			break
		}
	}

	if finalizedAt != 6 {
		t.Fatalf("high-value intel should finalize at the minimum turn gate, got turn %d", finalizedAt)
	}
}

func TestFinalizedSessionRefusesFurtherEngagement(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		if _, err := svc.HandleMessage(ctx, "s1", "urgent: account blocked, share otp now!"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	sess, _ := svc.Get("s1")
	msgsBefore := len(sess.Messages)

	result, err := svc.HandleMessage(ctx, "s1", "are you still there?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply != finalizedReply {
		t.Fatalf("expected terminal reply, got %q", result.Reply)
	}
	sess, _ = svc.Get("s1")
	if len(sess.Messages) != msgsBefore {
		t.Fatal("finalized session must not grow its transcript")
	}
}

func TestConcurrentTurnsAndInspection(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", w%2)
			for i := 0; i < 10; i++ {
				if _, err := svc.HandleMessage(ctx, id, "urgent: account blocked, share otp now!"); err != nil {
					t.Errorf("turn failed: %v", err)
				}
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			svc.List()
			svc.Get("s0")
			svc.Finalize("s1")
		}
	}()
	wg.Wait()

	for _, id := range []string{"s0", "s1"} {
		sess, ok := svc.Get(id)
		if !ok {
			t.Fatalf("session %s missing", id)
		}
		if len(sess.Messages)%2 != 0 {
			t.Fatalf("session %s transcript has an unmatched turn: %d messages", id, len(sess.Messages))
		}
		if sess.State.TurnCount > 10 {
			t.Fatalf("session %s exceeded the turn limit: %d", id, sess.State.TurnCount)
		}
	}
}

func TestInspectionOfUnknownSessionLeavesNoTrace(t *testing.T) {
	svc := testService()

	if _, ok := svc.Get("ghost"); ok {
		t.Fatal("expected no session for unknown id")
	}
	if _, ok := svc.Finalize("ghost"); ok {
		t.Fatal("expected no report for unknown id")
	}

	svc.lockMu.Lock()
	n := len(svc.locks)
	svc.lockMu.Unlock()
	if n != 0 {
		t.Fatalf("inspecting unknown ids allocated %d lock entries", n)
	}
}

func TestFinalReportShape(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	if _, err := svc.HandleMessage(ctx, "s1", "URGENT: account blocked! Call 9876543210, pay to scammer@paytm, visit http://bit.ly/xy12"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rep, ok := svc.Finalize("s1")
	if !ok {
		t.Fatal("expected report for existing session")
	}
	if rep.SessionID != "s1" {
		t.Fatalf("wrong session id: %s", rep.SessionID)
	}
	if !rep.ScamDetected {
		t.Fatal("report must carry the scam verdict")
	}
	for _, typ := range intel.AllTypes() {
		if _, present := rep.ExtractedIntelligence[typ]; !present {
			t.Fatalf("report intelligence missing type %s", typ)
		}
	}
	if rep.TotalMessagesExchanged != 2 {
		t.Fatalf("expected 2 exchanged messages, got %d", rep.TotalMessagesExchanged)
	}
	if rep.AgentNotes == "" {
		t.Fatal("expected non-empty agent notes")
	}
}

func TestListSessions(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	svc.HandleMessage(ctx, "a", "hello")
	svc.HandleMessage(ctx, "b", "urgent account blocked share otp")

	summaries := svc.List()
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(summaries))
	}
}
