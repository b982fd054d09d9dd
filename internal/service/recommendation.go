package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/careerpilot/backend/internal/domain"
	"github.com/careerpilot/backend/pkg/ai"
)

const (
	freshnessWindow    = 24 * time.Hour
	completionTimeout  = 15 * time.Second
	completionBudget   = 400 // max tokens
	maxRecommendations = 5
	minLineLength      = 12
)

// RecommendationStore persists generated recommendation sets.
type RecommendationStore interface {
	ListSince(ctx context.Context, userID string, cutoff time.Time) ([]*domain.Recommendation, error)
	CreateBatch(ctx context.Context, recs []*domain.Recommendation) error
	SetCompleted(ctx context.Context, userID, id string, completed bool) (bool, error)
}

// ContextSources are the reads assembled into the generation prompt.
type ContextSources struct {
	Goals interface {
		ListOpenByUser(ctx context.Context, userID string, limit int) ([]*domain.Goal, error)
	}
	Applications interface {
		ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Application, error)
	}
	Work interface {
		ListByUser(ctx context.Context, userID string, limit int) ([]*domain.WorkExperience, error)
	}
	Contacts interface {
		ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Contact, error)
	}
}

// RecommendationService generates career recommendations from the user's
// data via the completion service. Every failure branch degrades to a usable
// set; this endpoint never hard-errors.
type RecommendationService struct {
	store     RecommendationStore
	sources   ContextSources
	completer ai.Completer
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(store RecommendationStore, sources ContextSources, completer ai.Completer) *RecommendationService {
	return &RecommendationService{store: store, sources: sources, completer: completer}
}

// GetOrGenerate returns the user's fresh recommendation set, generating a new
// one when the latest set is older than 24 hours.
func (s *RecommendationService) GetOrGenerate(ctx context.Context, user *domain.User) ([]*domain.Recommendation, error) {
	cutoff := time.Now().Add(-freshnessWindow)
	existing, err := s.store.ListSince(ctx, user.ID, cutoff)
	if err != nil {
		log.Printf("recommendation cache read failed, regenerating: %v", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	prompt := s.buildPrompt(ctx, user)

	texts, recType := s.generate(ctx, prompt)

	now := time.Now()
	recs := make([]*domain.Recommendation, 0, len(texts))
	for i, text := range texts {
		recs = append(recs, &domain.Recommendation{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			Text:      text,
			Type:      recType,
			Priority:  i + 1,
			CreatedAt: now,
		})
	}

	if err := s.store.CreateBatch(ctx, recs); err != nil {
		// Degrade: serve the in-memory set rather than failing the request.
		log.Printf("recommendation persist failed, serving unsaved set: %v", err)
	}
	return recs, nil
}

// Complete toggles a recommendation's completion flag.
func (s *RecommendationService) Complete(ctx context.Context, userID, id string, completed bool) error {
	ok, err := s.store.SetCompleted(ctx, userID, id, completed)
	if err != nil {
		return domain.ErrInternal("failed to update recommendation", err)
	}
	if !ok {
		return domain.ErrNotFound("recommendation not found")
	}
	return nil
}

func (s *RecommendationService) generate(ctx context.Context, prompt string) ([]string, string) {
	cctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	text, err := s.completer.Complete(cctx, prompt, completionBudget)
	if err != nil {
		log.Printf("completion call failed, using fallback set: %v", err)
		return fallbackRecommendations(), "fallback"
	}

	lines := ParseCompletion(text)
	if len(lines) == 0 {
		log.Printf("completion yielded no usable lines, using fallback set")
		return fallbackRecommendations(), "fallback"
	}
	return lines, "generated"
}

// buildPrompt assembles the user's career context with parallel reads. A
// failed read contributes nothing instead of failing generation.
func (s *RecommendationService) buildPrompt(ctx context.Context, user *domain.User) string {
	var (
		goals    []*domain.Goal
		apps     []*domain.Application
		work     []*domain.WorkExperience
		contacts []*domain.Contact
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.sources.Goals.ListOpenByUser(gctx, user.ID, 10)
		if err != nil {
			log.Printf("recommendation context: goals read failed: %v", err)
			return nil
		}
		goals = out
		return nil
	})
	g.Go(func() error {
		out, err := s.sources.Applications.ListByUser(gctx, user.ID, 5)
		if err != nil {
			log.Printf("recommendation context: applications read failed: %v", err)
			return nil
		}
		apps = out
		return nil
	})
	g.Go(func() error {
		out, err := s.sources.Work.ListByUser(gctx, user.ID, 3)
		if err != nil {
			log.Printf("recommendation context: work history read failed: %v", err)
			return nil
		}
		work = out
		return nil
	})
	g.Go(func() error {
		out, err := s.sources.Contacts.ListByUser(gctx, user.ID, 5)
		if err != nil {
			log.Printf("recommendation context: contacts read failed: %v", err)
			return nil
		}
		contacts = out
		return nil
	})
	_ = g.Wait()

	var b strings.Builder
	fmt.Fprintf(&b, "You are a career coach. Suggest up to %d concrete next actions for this person, one per line.\n\n", maxRecommendations)
	fmt.Fprintf(&b, "Name: %s\n", user.Name)
	if len(goals) > 0 {
		b.WriteString("Open goals:\n")
		for _, goal := range goals {
			fmt.Fprintf(&b, "- %s\n", goal.Title)
		}
	}
	if len(apps) > 0 {
		b.WriteString("Recent applications:\n")
		for _, a := range apps {
			fmt.Fprintf(&b, "- %s at %s (%s)\n", a.Position, a.Company, a.Status)
		}
	}
	if len(work) > 0 {
		b.WriteString("Work history:\n")
		for _, w := range work {
			fmt.Fprintf(&b, "- %s at %s\n", w.Title, w.Company)
		}
	}
	if len(contacts) > 0 {
		b.WriteString("Recent contacts:\n")
		for _, c := range contacts {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Name, c.Company)
		}
	}
	return b.String()
}

// ParseCompletion extracts discrete recommendation lines from free text:
// numbered or bulleted lines with markers stripped, too-short lines dropped,
// capped at the set maximum.
func ParseCompletion(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = stripListMarker(line)
		if len(line) < minLineLength {
			continue
		}
		out = append(out, line)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}

func stripListMarker(line string) string {
	// "1. ", "2) ", "10."
	i := 0
	for i < len(line) && unicode.IsDigit(rune(line[i])) {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}
	// "- ", "* ", "• "
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):])
		}
	}
	return line
}

func fallbackRecommendations() []string {
	return []string{
		"Update your resume with your most recent role and accomplishments",
		"Set one specific career goal for the next quarter",
		"Reach out to a former colleague you haven't spoken with in a while",
		"Research three companies you would like to work for",
		"Practice answering common interview questions for your target role",
	}
}
