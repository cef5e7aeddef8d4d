package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/fannax/internal/domain/team"
	"github.com/riskibarqy/fannax/internal/domain/user"
	basecache "github.com/riskibarqy/fannax/internal/platform/cache"
)

const (
	teamKeyPrefix        = "team:"
	leaderboardKeyPrefix = "leaderboard:"
)

// TeamRepository caches point lookups. Any write drops every team entry.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

var _ team.Repository = (*TeamRepository)(nil)

func (r *TeamRepository) GetByID(ctx context.Context, id string) (team.Team, bool, error) {
	return r.getCached(ctx, teamKeyPrefix+"id:"+id, func(ctx context.Context) (team.Team, bool, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, externalID int64) (team.Team, bool, error) {
	key := teamKeyPrefix + "external:" + strconv.FormatInt(externalID, 10)
	return r.getCached(ctx, key, func(ctx context.Context) (team.Team, bool, error) {
		return r.next.GetByExternalID(ctx, externalID)
	})
}

func (r *TeamRepository) getCached(ctx context.Context, key string, load func(context.Context) (team.Team, bool, error)) (team.Team, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cached.value, cached.exists, nil
}

type cachedTeam struct {
	value  team.Team
	exists bool
}

func (r *TeamRepository) ListByIDs(ctx context.Context, ids []string) ([]team.Team, error) {
	return r.next.ListByIDs(ctx, ids)
}

func (r *TeamRepository) List(ctx context.Context, query team.ListQuery) ([]team.Team, error) {
	return r.next.List(ctx, query)
}

func (r *TeamRepository) HandleTaken(ctx context.Context, handle string) (bool, error) {
	return r.next.HandleTaken(ctx, handle)
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) (team.Team, bool, error) {
	stored, created, err := r.next.Create(ctx, t)
	if err == nil {
		r.cache.DeletePrefix(ctx, teamKeyPrefix)
	}
	return stored, created, err
}

func (r *TeamRepository) Update(ctx context.Context, t team.Team) error {
	err := r.next.Update(ctx, t)
	r.cache.DeletePrefix(ctx, teamKeyPrefix)
	return err
}

// UserRepository caches the leaderboard for the store TTL. Ledger credits
// made by settlement become visible once the entry expires.
type UserRepository struct {
	next  user.Repository
	cache *basecache.Store
}

func NewUserRepository(next user.Repository, cache *basecache.Store) *UserRepository {
	return &UserRepository{next: next, cache: cache}
}

var _ user.Repository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *UserRepository) EnsureExists(ctx context.Context, principal user.Principal) error {
	return r.next.EnsureExists(ctx, principal)
}

func (r *UserRepository) ListTopPredictors(ctx context.Context, limit int) ([]user.User, error) {
	key := leaderboardKeyPrefix + strconv.Itoa(limit)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListTopPredictors(ctx, limit)
		if err != nil {
			return nil, err
		}
		return append([]user.User(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]user.User)
	return append([]user.User(nil), items...), nil
}
