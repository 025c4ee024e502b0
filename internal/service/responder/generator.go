// Package responder turns a strategy into the actual persona reply.
// Replies cascade through three tiers: the hosted model, local pattern
// pools, then stage-keyed emergency lines. Whatever the tier, the same
// uniqueness machinery guarantees a session never repeats itself.
package responder

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/teamyukt/honeynet/internal/model/conversation"
	"github.com/teamyukt/honeynet/internal/model/persona"
	"github.com/teamyukt/honeynet/internal/service/engagement"
)

// TextGenerator produces a model-written reply. *ai.Service satisfies
// it; a nil generator disables the first tier entirely.
type TextGenerator interface {
	GenerateReply(ctx context.Context, systemPrompt string, history []conversation.Message, query string) (string, error)
}

const maxReplyLength = 240

// Phrases a roleplay model leaks when it breaks character. A reply
// containing any of them is discarded before it reaches the adversary.
var refusalMarkers = []string{
	"as an ai",
	"as a language model",
	"i cannot assist",
	"i can't assist",
	"i'm sorry, but i",
	"i am unable to",
	"i cannot help with",
}

var uniquenessSuffixes = []string{
	" Hello? Are you still there?",
	" Please answer me properly.",
	" I'm waiting for your reply.",
	" Tell me clearly this time.",
}

// Generator renders replies. The rand source is injected so tests can
// seed it and replay exact sequences.
type Generator struct {
	gen           TextGenerator
	historyWindow int
	log           *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator wires the reply cascade. gen may be nil when no model
// is configured.
func NewGenerator(gen TextGenerator, rng *rand.Rand, historyWindow int, log *zap.Logger) *Generator {
	if historyWindow <= 0 {
		historyWindow = 5
	}
	return &Generator{
		gen:           gen,
		historyWindow: historyWindow,
		log:           log,
		rng:           rng,
	}
}

// Reply produces the next outbound line for the session and records
// its hash and topic on the state. The caller holds the session lock.
func (g *Generator) Reply(ctx context.Context, sess *conversation.Session, p *persona.Persona, strategy engagement.Strategy, req engagement.RequestKind, incoming string) string {
	state := sess.State

	if g.gen != nil {
		if reply, ok := g.tryModel(ctx, sess, p, strategy, incoming); ok {
			g.commit(state, strategy, reply)
			return reply
		}
	}

	reply := g.fromPool(state, strategy, req)
	if reply == "" {
		reply = g.emergency(state)
	}
	reply = g.ensureUnique(state, reply)
	g.commit(state, strategy, reply)
	return reply
}

func (g *Generator) commit(state *conversation.State, strategy engagement.Strategy, reply string) {
	state.MarkUsed(normalizeHash(reply))
	state.AskedTopics[string(strategy)] = struct{}{}
}

func (g *Generator) tryModel(ctx context.Context, sess *conversation.Session, p *persona.Persona, strategy engagement.Strategy, incoming string) (string, bool) {
	system := g.buildSystemPrompt(sess, p, strategy)
	raw, err := g.gen.GenerateReply(ctx, system, sess.Recent(g.historyWindow), incoming)
	if err != nil {
		g.log.Warn("model reply failed, falling back to pattern pool",
			zap.String("session_id", sess.ID), zap.Error(err))
		return "", false
	}

	reply := strings.TrimSpace(raw)
	if !g.acceptable(sess.State, reply) {
		g.log.Debug("model reply rejected by quality gate",
			zap.String("session_id", sess.ID), zap.Int("length", len(reply)))
		return "", false
	}
	return reply, true
}

// acceptable is the quality gate for model output.
func (g *Generator) acceptable(state *conversation.State, reply string) bool {
	if reply == "" || len(reply) > maxReplyLength {
		return false
	}
	lower := strings.ToLower(reply)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return !state.Used(normalizeHash(reply))
}

func (g *Generator) buildSystemPrompt(sess *conversation.Session, p *persona.Persona, strategy engagement.Strategy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s. %s\n", p.Name, p.Background, p.PromptHint)
	fmt.Fprintf(&b, "Tone: %s. Current emotional register: %s.\n", p.Tone, sess.State.Stage)
	b.WriteString("You suspect the caller may be a fraudster but you never say so; you play along as a potential victim.\n")
	b.WriteString("RULES:\n")
	b.WriteString("1. Keep the reply VERY SHORT, one or two sentences.\n")
	b.WriteString("2. Never share a real OTP, PIN, password or card number. Deflect instead.\n")
	b.WriteString("3. Never agree to actually send money.\n")
	fmt.Fprintf(&b, "4. Goal for this reply: %s\n", engagement.Instruction(strategy))

	if recent := lastAgentLines(sess, 5); len(recent) > 0 {
		b.WriteString("5. Do NOT reuse any of your previous lines:\n")
		for _, line := range recent {
			fmt.Fprintf(&b, "   - %s\n", line)
		}
	}
	return b.String()
}

func lastAgentLines(sess *conversation.Session, n int) []string {
	var lines []string
	for i := len(sess.Messages) - 1; i >= 0 && len(lines) < n; i-- {
		if sess.Messages[i].Sender == conversation.SenderAgent {
			lines = append(lines, sess.Messages[i].Text)
		}
	}
	return lines
}

// fromPool picks an unused line for the strategy, occasionally leading
// with a reaction to what the adversary just demanded.
func (g *Generator) fromPool(state *conversation.State, strategy engagement.Strategy, req engagement.RequestKind) string {
	pool := patternPools[strategy]
	if len(pool) == 0 {
		return ""
	}

	var unused []string
	for _, line := range pool {
		if !state.Used(normalizeHash(line)) {
			unused = append(unused, line)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var line string
	if len(unused) > 0 {
		line = unused[g.rng.Intn(len(unused))]
	} else {
		line = pool[g.rng.Intn(len(pool))]
	}

	if reactions := reactionLines[req]; len(reactions) > 0 && g.rng.Intn(2) == 0 {
		line = reactions[g.rng.Intn(len(reactions))] + " " + line
	}
	return line
}

func (g *Generator) emergency(state *conversation.State) string {
	pool := emergencyLines[state.Stage]
	if len(pool) == 0 {
		pool = emergencyLines[conversation.StageWorried]
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return pool[g.rng.Intn(len(pool))]
}

// ensureUnique retries mechanical variations a bounded number of times
// and then falls back to a deterministic suffix, so it always
// terminates with a line the session has not sent before.
func (g *Generator) ensureUnique(state *conversation.State, line string) string {
	for attempt := 0; attempt < 3; attempt++ {
		if !state.Used(normalizeHash(line)) {
			return line
		}
		line = g.vary(line, attempt)
	}
	if !state.Used(normalizeHash(line)) {
		return line
	}
	suffix := uniquenessSuffixes[len(state.UsedResponseHashes)%len(uniquenessSuffixes)]
	if candidate := line + suffix; !state.Used(normalizeHash(candidate)) {
		return candidate
	}
	// the used-count grows every turn, so this text cannot recur
	return fmt.Sprintf("%s I am asking for the %dth time now.", line, len(state.UsedResponseHashes))
}

func (g *Generator) vary(line string, attempt int) string {
	switch attempt {
	case 0:
		g.mu.Lock()
		prefix := variationPrefixes[g.rng.Intn(len(variationPrefixes))]
		g.mu.Unlock()
		return prefix + lowerFirst(line)
	case 1:
		for _, swap := range contractionSwaps {
			if strings.Contains(line, swap[0]) {
				return strings.Replace(line, swap[0], swap[1], 1)
			}
			if strings.Contains(line, swap[1]) {
				return strings.Replace(line, swap[1], swap[0], 1)
			}
		}
		return line + " Please."
	default:
		if strings.HasSuffix(line, "?") {
			return strings.TrimSuffix(line, "?") + "??"
		}
		return strings.TrimSuffix(line, ".") + "..."
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// normalizeHash lowercases, strips punctuation and collapses spaces so
// trivially restyled lines still collide.
func normalizeHash(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	h := fnv.New32a()
	h.Write([]byte(strings.TrimSpace(b.String())))
	return fmt.Sprintf("%08x", h.Sum32())
}
