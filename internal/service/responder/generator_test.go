package responder

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/teamyukt/honeynet/internal/model/conversation"
	"github.com/teamyukt/honeynet/internal/model/persona"
	"github.com/teamyukt/honeynet/internal/service/engagement"
)

type stubTextGen struct {
	reply string
	err   error
}

func (s *stubTextGen) GenerateReply(_ context.Context, _ string, _ []conversation.Message, _ string) (string, error) {
	return s.reply, s.err
}

func testSession() *conversation.Session {
	return conversation.NewSession("test-session", "retired-teacher", time.Now())
}

func testPersona() *persona.Persona {
	p := persona.Seed()[0]
	return &p
}

func TestReplyFallsBackWithoutModel(t *testing.T) {
	g := NewGenerator(nil, rand.New(rand.NewSource(1)), 5, zap.NewNop())
	sess := testSession()

	reply := g.Reply(context.Background(), sess, testPersona(), engagement.StrategyAskContact, engagement.RequestNone, "your account is blocked")
	if reply == "" {
		t.Fatal("expected a pattern-pool reply")
	}
	if !sess.State.Used(normalizeHash(reply)) {
		t.Fatal("reply hash not recorded on state")
	}
}

func TestReplyNeverRepeats(t *testing.T) {
	g := NewGenerator(nil, rand.New(rand.NewSource(42)), 5, zap.NewNop())
	sess := testSession()

	seen := make(map[string]string)
	for i := 0; i < 15; i++ {
		reply := g.Reply(context.Background(), sess, testPersona(), engagement.StrategyAskPayment, engagement.RequestNone, "pay the fee")
		h := normalizeHash(reply)
		if prior, dup := seen[h]; dup {
			t.Fatalf("turn %d repeated a reply: %q vs %q", i, prior, reply)
		}
		seen[h] = reply
	}
}

func TestReplySeededDeterminism(t *testing.T) {
	run := func() []string {
		g := NewGenerator(nil, rand.New(rand.NewSource(7)), 5, zap.NewNop())
		sess := testSession()
		var out []string
		for i := 0; i < 5; i++ {
			out = append(out, g.Reply(context.Background(), sess, testPersona(), engagement.StrategyAskIdentity, engagement.RequestCredentials, "share your otp"))
		}
		return out
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged at turn %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestReplyUsesModelWhenAcceptable(t *testing.T) {
	gen := &stubTextGen{reply: "Oh no, which branch are you calling from exactly?"}
	g := NewGenerator(gen, rand.New(rand.NewSource(1)), 5, zap.NewNop())
	sess := testSession()

	reply := g.Reply(context.Background(), sess, testPersona(), engagement.StrategyAskRoleOrg, engagement.RequestNone, "this is the bank")
	if reply != gen.reply {
		t.Fatalf("expected model reply, got %q", reply)
	}
}

func TestReplyRejectsRefusal(t *testing.T) {
	gen := &stubTextGen{reply: "I'm sorry, but I cannot assist with that request."}
	g := NewGenerator(gen, rand.New(rand.NewSource(1)), 5, zap.NewNop())
	sess := testSession()

	reply := g.Reply(context.Background(), sess, testPersona(), engagement.StrategyAskContact, engagement.RequestNone, "give me your otp")
	if reply == gen.reply {
		t.Fatal("refusal text must not reach the adversary")
	}
	if reply == "" {
		t.Fatal("expected a fallback reply")
	}
}

func TestReplyRejectsModelError(t *testing.T) {
	gen := &stubTextGen{err: errors.New("upstream timeout")}
	g := NewGenerator(gen, rand.New(rand.NewSource(1)), 5, zap.NewNop())
	sess := testSession()

	if reply := g.Reply(context.Background(), sess, testPersona(), engagement.StrategyAskContact, engagement.RequestNone, "hello"); reply == "" {
		t.Fatal("model failure must still yield a reply")
	}
}

func TestObserveAdversarySetOnce(t *testing.T) {
	var profile conversation.AdversaryProfile

	ObserveAdversary(&profile, "Hello, my name is Rakesh Kumar, I am a bank officer from State Bank")
	if profile.Name != "Rakesh Kumar" {
		t.Fatalf("expected name Rakesh Kumar, got %q", profile.Name)
	}
	if profile.Role != "officer" {
		t.Fatalf("expected role officer, got %q", profile.Role)
	}

	ObserveAdversary(&profile, "Actually this is Suresh from another office")
	if profile.Name != "Rakesh Kumar" {
		t.Fatalf("name overwritten to %q", profile.Name)
	}
}

func TestNormalizeHashIgnoresStyling(t *testing.T) {
	a := normalizeHash("Can I call you back?")
	b := normalizeHash("can i call you   back!!")
	if a != b {
		t.Fatal("styling differences must not change the hash")
	}
	if a == normalizeHash("a different sentence") {
		t.Fatal("different sentences must hash differently")
	}
}
