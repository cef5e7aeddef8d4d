package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/notification"
	"github.com/riskibarqy/fannax/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fannax/internal/platform/id"
)

var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func intPtr(v int) *int { return &v }

type fakeProvider struct {
	mu        sync.Mutex
	fixtures  []ExternalFixture
	err       error
	teamPages map[int]ExternalTeamPage
	pageErrs  map[int]error
	calls     int
}

func (p *fakeProvider) FetchFixturesBetween(_ context.Context, _, _ time.Time) ([]ExternalFixture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]ExternalFixture, len(p.fixtures))
	copy(out, p.fixtures)
	return out, nil
}

func (p *fakeProvider) FetchTeamsPage(_ context.Context, page, _ int) (ExternalTeamPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if err := p.pageErrs[page]; err != nil {
		return ExternalTeamPage{}, err
	}
	return p.teamPages[page], nil
}

type enqueuedJob struct {
	path    string
	payload any
	delay   time.Duration
	dedupID string
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []enqueuedJob
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, path string, payload any, delay time.Duration, dedupID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, enqueuedJob{path: path, payload: payload, delay: delay, dedupID: dedupID})
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []notification.Notification
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, item notification.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
	return n.err
}

func (n *recordingNotifier) messages() map[string]string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]string, len(n.items))
	for _, item := range n.items {
		out[item.PredictionID] = item.Message
	}
	return out
}

func externalFixture(externalID int64, homeID int64, homeName string, awayID int64, awayName string) ExternalFixture {
	return ExternalFixture{
		ExternalID:       externalID,
		Home:             &ExternalTeam{ExternalID: homeID, Name: homeName},
		Away:             &ExternalTeam{ExternalID: awayID, Name: awayName},
		StartingAt:       testNow.Add(time.Duration(externalID) * time.Hour),
		Status:           "SCHEDULED",
		LeagueName:       "Premier League",
		LeagueExternalID: 8,
	}
}

type syncHarness struct {
	store    *memory.Store
	provider *fakeProvider
	queue    *fakeQueue
	service  *FixtureSyncService
}

func newSyncHarness() *syncHarness {
	store := memory.NewStore()
	provider := &fakeProvider{}
	queue := &fakeQueue{}
	registry := NewTeamRegistry(store.Teams(), &id.SequenceGenerator{Prefix: "team"}, nil)
	service := NewFixtureSyncService(provider, registry, store.Matches(), &id.SequenceGenerator{Prefix: "match"}, queue, FixtureSyncConfig{SettleDelay: 30 * time.Second}, nil)
	service.now = fixedNow
	return &syncHarness{store: store, provider: provider, queue: queue, service: service}
}

func teamName(i int) string { return fmt.Sprintf("Club %02d", i) }
