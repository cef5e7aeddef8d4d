package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fannax/internal/domain/team"
	"github.com/riskibarqy/fannax/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fannax/internal/platform/id"
)

func TestTeamSyncService_Sync_WalksPagesAndStopsOnLaterFailure(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	provider := &fakeProvider{
		teamPages: map[int]ExternalTeamPage{
			1: {Page: 1, HasMore: true, Teams: []ExternalTeam{{ExternalID: 1, Name: "Arsenal"}, {ExternalID: 2, Name: "Chelsea"}}},
			2: {Page: 2, HasMore: true, Teams: []ExternalTeam{{ExternalID: 3, Name: ""}}},
		},
		pageErrs: map[int]error{3: errors.New("502 bad gateway")},
	}
	service := NewTeamSyncService(provider, NewTeamRegistry(store.Teams(), &id.SequenceGenerator{Prefix: "team"}, nil), TeamSyncConfig{PerPage: 2}, nil)

	result, err := service.Sync(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	want := TeamSyncResult{Created: 2, Errors: 2, Total: 3, Pages: 2}
	if result != want {
		t.Fatalf("unexpected result: got %+v want %+v", result, want)
	}

	arsenal, found, err := store.Teams().GetByExternalID(context.Background(), 1)
	if err != nil || !found || arsenal.ReservedHandle != "arsenal" {
		t.Fatalf("unexpected arsenal: %+v found=%v err=%v", arsenal, found, err)
	}
}

func TestTeamSyncService_Sync_RefreshKeepsHandle(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	provider := &fakeProvider{teamPages: map[int]ExternalTeamPage{
		1: {Page: 1, Teams: []ExternalTeam{{ExternalID: 7, Name: "Spurs", ShortCode: "TOT"}}},
	}}
	service := NewTeamSyncService(provider, NewTeamRegistry(store.Teams(), nil, nil), TeamSyncConfig{}, nil)
	if _, err := service.Sync(context.Background()); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	provider.teamPages[1] = ExternalTeamPage{Page: 1, Teams: []ExternalTeam{{ExternalID: 7, Name: "Tottenham Hotspur", ShortCode: "TOT"}}}
	result, err := service.Sync(context.Background())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	stored, _, _ := store.Teams().GetByExternalID(context.Background(), 7)
	if stored.Name != "Tottenham Hotspur" || stored.ReservedHandle != "spurs" {
		t.Fatalf("unexpected team after refresh: %+v", stored)
	}
}

func TestTeamSyncService_Sync_FirstPageFailureIsUpstream(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{pageErrs: map[int]error{1: errors.New("timeout")}}
	service := NewTeamSyncService(provider, NewTeamRegistry(memory.NewStore().Teams(), nil, nil), TeamSyncConfig{}, nil)
	if _, err := service.Sync(context.Background()); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

type handleRaceRepo struct {
	team.Repository
	raced bool
}

// Create loses the first race on the handle, as a concurrent insert would.
func (r *handleRaceRepo) Create(ctx context.Context, t team.Team) (team.Team, bool, error) {
	if !r.raced {
		r.raced = true
		return team.Team{}, false, team.ErrHandleTaken
	}
	return r.Repository.Create(ctx, t)
}

func TestTeamRegistry_Ensure_RetriesNextHandleOnRace(t *testing.T) {
	t.Parallel()

	repo := &handleRaceRepo{Repository: memory.NewStore().Teams()}
	registry := NewTeamRegistry(repo, &id.SequenceGenerator{Prefix: "team"}, nil)

	got, created, err := registry.Ensure(context.Background(), ExternalTeam{ExternalID: 9, Name: "Everton"})
	if err != nil || !created {
		t.Fatalf("ensure: created=%v err=%v", created, err)
	}
	if got.ReservedHandle != "everton1" {
		t.Fatalf("expected suffixed handle after race, got %q", got.ReservedHandle)
	}
}

func TestTeamRegistry_Ensure_ExhaustedHandlesIsConflict(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	registry := NewTeamRegistry(store.Teams(), nil, nil)
	registry.maxAttempts = 2

	for i, name := range []string{"Leeds", "Leeds!"} {
		if _, _, err := registry.Ensure(context.Background(), ExternalTeam{ExternalID: int64(i + 1), Name: name}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	_, _, err := registry.Ensure(context.Background(), ExternalTeam{ExternalID: 3, Name: "LEEDS"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
