package artifacts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/go-go-golems/velocity/pkg/tagged"
)

// Repository stores artifacts. Save replaces an artifact with the same ID.
type Repository interface {
	Save(ctx context.Context, a Artifact) error
	// List returns artifacts sorted by LastModified, newest first.
	List(ctx context.Context) ([]Artifact, error)
	Get(ctx context.Context, id string) (Artifact, bool, error)
}

// MemoryRepository keeps artifacts in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Artifact
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: map[string]Artifact{}}
}

func (r *MemoryRepository) Save(_ context.Context, a Artifact) error {
	if a.ID == "" {
		return errors.New("artifact has no id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = a
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Artifact, error) {
	r.mu.RLock()
	ret := make([]Artifact, 0, len(r.items))
	for _, a := range r.items {
		ret = append(ret, a)
	}
	r.mu.RUnlock()
	sortNewestFirst(ret)
	return ret, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Artifact, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	return a, ok, nil
}

func sortNewestFirst(as []Artifact) {
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].LastModified.Equal(as[j].LastModified) {
			return as[i].ID < as[j].ID
		}
		return as[i].LastModified.After(as[j].LastModified)
	})
}

// Samples returns the demo artifacts, timestamped relative to now.
func Samples(now time.Time) []Artifact {
	return []Artifact{
		{
			ID:           "101",
			Title:        "Cloud Migration Proposal",
			Kind:         KindProposal,
			Status:       StatusInReview,
			CompanyName:  "Acme Corp",
			CreatedAt:    now.Add(-48 * time.Hour),
			LastModified: now.Add(-time.Hour),
			Content: tagged.ArtifactPayload{
				DocumentContent:     "# Cloud Migration Proposal for Acme Corp\n\n## Executive Summary\nAcme Corp is positioned to reduce operational costs by 30% through a strategic migration to the Azure cloud environment.\n\n## Proposed Solution\n- **Phase 1**: Assessment & Planning\n- **Phase 2**: Lift & Shift of core workloads\n- **Phase 3**: Optimization\n\n## Investment\nTotal estimated cost: $150,000",
				PresentationContent: "# Cloud Strategy\n\n- Secure\n- Scalable\n- Cost-effective\n\n---\n\n# Timeline\n\n- Q1: Planning\n- Q2: Execution",
			},
		},
		{
			ID:           "102",
			Title:        "Implementation Handoff",
			Kind:         KindHandoff,
			Status:       StatusFinalized,
			CompanyName:  "Northwind Traders",
			CreatedAt:    now.Add(-120 * time.Hour),
			LastModified: now.Add(-400000 * time.Second),
			Content: tagged.ArtifactPayload{
				DocumentContent:     "# Implementation Handoff\n\n**Client**: Northwind Traders\n**Key Contact**: Maria Anders\n\n## Scope\nDeploy IoT tracking across 3 distribution centers.",
				PresentationContent: "# Kickoff\n\nTeam introductions...",
			},
		},
		{
			ID:           "103",
			Title:        "Executive Meeting Brief",
			Kind:         KindMeetingBrief,
			Status:       StatusDraft,
			CompanyName:  "TechStart Inc",
			CreatedAt:    now.Add(-30 * time.Minute),
			LastModified: now.Add(-15 * time.Minute),
			Content: tagged.ArtifactPayload{
				DocumentContent:     "# Meeting Brief: TechStart Inc\n\n**Goal**: Secure POC commitment.\n**Attendees**: Charlie Day (CTO)\n\n## Recent News\nClosed Series B funding ($50M).",
				PresentationContent: "# Agenda\n\n1. Review Requirements\n2. Demo\n3. Next Steps",
			},
		},
	}
}

// SeedSamples saves the sample artifacts that are not stored yet.
func SeedSamples(ctx context.Context, r Repository) error {
	for _, a := range Samples(time.Now()) {
		_, ok, err := r.Get(ctx, a.ID)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := r.Save(ctx, a); err != nil {
			return errors.Wrapf(err, "seed artifact %s", a.ID)
		}
	}
	return nil
}
