package services

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/timeos/framework/container"
)

// minReputation is the sender score below which emails are rejected.
const minReputation = 0.3

// ZeroTrustTriageEngineService scores emails. It depends on the ingestion
// engine, which depends back on it, so it holds a deferred handle.
type ZeroTrustTriageEngineService struct {
	ingester container.Lazy[EmailIngester]
	log      *zap.Logger
}

func NewZeroTrustTriageEngine(ingester container.Lazy[EmailIngester], logger Logger) *ZeroTrustTriageEngineService {
	return &ZeroTrustTriageEngineService{
		ingester: ingester,
		log:      logger.Component(string(ZeroTrustTriageEngine)),
	}
}

// Triage accepts an email when its sender is reputable and it has a subject.
func (e *ZeroTrustTriageEngineService) Triage(email Email) (TriageDecision, error) {
	ingester, err := e.ingester.Get()
	if err != nil {
		return TriageDecision{}, &TriageError{EmailID: email.ID, Err: err}
	}

	decision := TriageDecision{EmailID: email.ID, Priority: PriorityMedium}
	subject := strings.ToLower(email.Subject)
	score := ingester.Reputation(email.From)

	switch {
	case strings.TrimSpace(subject) == "":
		decision.Reason = "empty subject"
	case score < minReputation:
		decision.Reason = fmt.Sprintf("sender reputation %.2f below %.2f", score, minReputation)
	default:
		decision.Accepted = true
		decision.Reason = "trusted sender"
		if strings.Contains(subject, "urgent") || strings.Contains(subject, "asap") {
			decision.Priority = PriorityUrgent
		}
	}

	e.log.Debug("email triaged",
		zap.String("email", email.ID),
		zap.Bool("accepted", decision.Accepted),
		zap.String("reason", decision.Reason))
	return decision, nil
}

func (e *ZeroTrustTriageEngineService) SelfTest() error {
	if e.ingester.ID() == "" {
		return fmt.Errorf("triage engine has no ingestion handle")
	}
	return nil
}

// EmailIngestionEngineService turns triaged emails into tasks and learns
// sender reputation from the outcome.
type EmailIngestionEngineService struct {
	mu         sync.Mutex
	triage     container.Lazy[TriageEngine]
	audit      Auditor
	log        *zap.Logger
	reputation map[string]float64
	seq        int
}

func NewEmailIngestionEngine(triage container.Lazy[TriageEngine], audit Auditor, logger Logger) *EmailIngestionEngineService {
	return &EmailIngestionEngineService{
		triage:     triage,
		audit:      audit,
		log:        logger.Component(string(EmailIngestionEngine)),
		reputation: make(map[string]float64),
	}
}

// Ingest triages email and returns a new task, or nil when it was rejected.
func (g *EmailIngestionEngineService) Ingest(email Email) (*Task, error) {
	engine, err := g.triage.Get()
	if err != nil {
		return nil, err
	}
	decision, err := engine.Triage(email)
	if err != nil {
		return nil, err
	}
	g.Learn(email.From, decision.Accepted)
	if !decision.Accepted {
		g.audit.LogAuditEvent("EMAIL_REJECTED", email.ID, map[string]string{"reason": decision.Reason})
		return nil, nil
	}

	g.mu.Lock()
	g.seq++
	id := fmt.Sprintf("email-task-%d", g.seq)
	g.mu.Unlock()

	task := &Task{
		ID:               id,
		Title:            email.Subject,
		Status:           StatusNotStarted,
		Priority:         decision.Priority,
		Lane:             LaneAdmin,
		EstimatedMinutes: 30,
	}
	g.audit.LogAuditEvent("EMAIL_INGESTED", email.ID, map[string]string{"task": id})
	return task, nil
}

// Learn nudges the sender's reputation towards the outcome.
func (g *EmailIngestionEngineService) Learn(sender string, accepted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	score := g.reputationLocked(sender)
	target := 0.0
	if accepted {
		target = 1.0
	}
	g.reputation[strings.ToLower(sender)] = score + (target-score)*0.2
}

// Reputation returns the sender score in [0, 1]; unknown senders start at 0.5.
func (g *EmailIngestionEngineService) Reputation(sender string) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reputationLocked(sender)
}

func (g *EmailIngestionEngineService) reputationLocked(sender string) float64 {
	if score, ok := g.reputation[strings.ToLower(sender)]; ok {
		return score
	}
	return 0.5
}

func (g *EmailIngestionEngineService) SelfTest() error {
	if g.triage.ID() == "" {
		return fmt.Errorf("ingestion engine has no triage handle")
	}
	return nil
}
