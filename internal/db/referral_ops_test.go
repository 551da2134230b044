package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalbot/internal/models"
)

type ledgerEnv struct {
	ctx      context.Context
	store    *Store
	ledger   *ReferralLedger
	registry *DestinationRegistry
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()
	return newLedgerEnvWithStore(NewStore(NewMemoryBackend()))
}

func newLedgerEnvWithStore(store *Store) *ledgerEnv {
	return &ledgerEnv{
		ctx:      context.Background(),
		store:    store,
		ledger:   NewReferralLedger(store),
		registry: NewDestinationRegistry(store, "link"),
	}
}

func (e *ledgerEnv) addDestinations(t *testing.T, names ...string) []models.Destination {
	t.Helper()
	out := make([]models.Destination, 0, len(names))
	for _, n := range names {
		d, err := e.registry.Add(e.ctx, n, "https://t.me/+"+n)
		require.NoError(t, err)
		out = append(out, d)
	}
	return out
}

func (e *ledgerEnv) join(t *testing.T, userID, destID string) models.JoinOutcome {
	t.Helper()
	outcome, err := e.ledger.RecordDestinationJoin(e.ctx, userID, destID, e.registry.Count(e.ctx))
	require.NoError(t, err)
	return outcome
}

func TestRegister(t *testing.T) {
	env := newLedgerEnv(t)

	created, err := env.ledger.Register(env.ctx, "2", "1")
	require.NoError(t, err)
	assert.True(t, created)

	entry, ok := env.ledger.Entry(env.ctx, "2")
	require.True(t, ok)
	assert.Equal(t, "1", entry.ReferredBy)
	assert.Equal(t, 0, entry.ReferralCount)
	assert.False(t, entry.HasCompleted)
	assert.Empty(t, entry.CompletedDestinations)

	// Регистрация не начисляет очки.
	assert.Equal(t, 0, env.ledger.ReferralCount(env.ctx, "1"))

	created, err = env.ledger.Register(env.ctx, "2", "3")
	require.NoError(t, err)
	assert.False(t, created)
	entry, _ = env.ledger.Entry(env.ctx, "2")
	assert.Equal(t, "1", entry.ReferredBy, "referred_by is never overwritten")

	_, err = env.ledger.Register(env.ctx, " ", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterDoesNotRevalidateSelfReferral(t *testing.T) {
	env := newLedgerEnv(t)
	// Отсечение самоприглашения - обязанность вызывающего; учет сохраняет как есть.
	created, err := env.ledger.Register(env.ctx, "7", "7")
	require.NoError(t, err)
	assert.True(t, created)
	entry, _ := env.ledger.Entry(env.ctx, "7")
	assert.Equal(t, "7", entry.ReferredBy)
}

func TestThresholdCorrectness(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A", "B", "C")
	_, err := env.ledger.Register(env.ctx, "U", "R")
	require.NoError(t, err)

	assert.Equal(t, models.JoinNotYetCounted, env.join(t, "U", dests[0].ID))
	assert.Equal(t, models.JoinNotYetCounted, env.join(t, "U", dests[1].ID))
	assert.Equal(t, 0, env.ledger.ReferralCount(env.ctx, "R"))

	assert.Equal(t, models.JoinCounted, env.join(t, "U", dests[2].ID))
	entry, _ := env.ledger.Entry(env.ctx, "U")
	assert.True(t, entry.HasCompleted)
	assert.Equal(t, 1, env.ledger.ReferralCount(env.ctx, "R"))
}

func TestRepeatedJoinBeforeCompletionDoesNotCount(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A", "B")
	_, err := env.ledger.Register(env.ctx, "U", "R")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Equal(t, models.JoinNotYetCounted, env.join(t, "U", dests[0].ID))
	}
	entry, _ := env.ledger.Entry(env.ctx, "U")
	assert.Equal(t, []string{dests[0].ID}, entry.CompletedDestinations)
}

func TestAtMostOnceCreditAnyOrder(t *testing.T) {
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 1, 0, 2, 2, 0}, {0, 0, 0, 1, 2, 1, 2}}
	for _, order := range orders {
		env := newLedgerEnv(t)
		dests := env.addDestinations(t, "A", "B", "C")
		_, err := env.ledger.Register(env.ctx, "U", "R")
		require.NoError(t, err)

		counted := 0
		for _, idx := range order {
			if env.join(t, "U", dests[idx].ID) == models.JoinCounted {
				counted++
			}
		}
		assert.Equal(t, 1, counted, "order %v", order)
		assert.Equal(t, 1, env.ledger.ReferralCount(env.ctx, "R"), "order %v", order)
	}
}

func TestCompletionIdempotence(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A")
	_, err := env.ledger.Register(env.ctx, "U", "R")
	require.NoError(t, err)
	require.Equal(t, models.JoinCounted, env.join(t, "U", dests[0].ID))

	before, _ := env.ledger.Entry(env.ctx, "U")
	assert.Equal(t, models.JoinAlreadyCounted, env.join(t, "U", dests[0].ID))
	after, _ := env.ledger.Entry(env.ctx, "U")
	assert.Equal(t, before, after)
	assert.Equal(t, 1, env.ledger.ReferralCount(env.ctx, "R"))
}

func TestJoinAfterCompletionRecordsNewDestination(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A")
	_, err := env.ledger.Register(env.ctx, "U", "R")
	require.NoError(t, err)
	require.Equal(t, models.JoinCounted, env.join(t, "U", dests[0].ID))

	more := env.addDestinations(t, "B")
	assert.Equal(t, models.JoinAlreadyCounted, env.join(t, "U", more[0].ID))
	entry, _ := env.ledger.Entry(env.ctx, "U")
	assert.ElementsMatch(t, []string{dests[0].ID, more[0].ID}, entry.CompletedDestinations)
	assert.Equal(t, 1, env.ledger.ReferralCount(env.ctx, "R"))
}

func TestMissingReferrerIsCreated(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A")
	_, err := env.ledger.Register(env.ctx, "U", "ghost")
	require.NoError(t, err)

	assert.Equal(t, models.JoinCounted, env.join(t, "U", dests[0].ID))
	ghost, ok := env.ledger.Entry(env.ctx, "ghost")
	require.True(t, ok)
	assert.Equal(t, 1, ghost.ReferralCount)
	assert.Empty(t, ghost.ReferredBy)
	assert.False(t, ghost.HasCompleted)
}

func TestJoinBeforeRegisterCreatesEntry(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A", "B")

	assert.Equal(t, models.JoinNotYetCounted, env.join(t, "U", dests[0].ID))
	entry, ok := env.ledger.Entry(env.ctx, "U")
	require.True(t, ok)
	assert.Empty(t, entry.ReferredBy)
	assert.Equal(t, []string{dests[0].ID}, entry.CompletedDestinations)

	// Поздняя регистрация не перезаписывает запись и не привязывает пригласившего.
	created, err := env.ledger.Register(env.ctx, "U", "R")
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, models.JoinCounted, env.join(t, "U", dests[1].ID))
	assert.Equal(t, 0, env.ledger.ReferralCount(env.ctx, "R"))
	assert.Equal(t, 0, env.ledger.TotalReferralCredits(env.ctx))
}

func TestScenarioTwoDestinations(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A", "B")
	a, b := dests[0], dests[1]

	_, err := env.ledger.Register(env.ctx, "U1", "")
	require.NoError(t, err)
	_, err = env.ledger.Register(env.ctx, "U2", "U1")
	require.NoError(t, err)

	assert.Equal(t, models.JoinNotYetCounted, env.join(t, "U2", a.ID))
	assert.Equal(t, models.JoinCounted, env.join(t, "U2", b.ID))
	assert.Equal(t, 1, env.ledger.ReferralCount(env.ctx, "U1"))
	assert.Equal(t, models.JoinAlreadyCounted, env.join(t, "U2", a.ID))
	assert.Equal(t, 1, env.ledger.ReferralCount(env.ctx, "U1"))

	// Удаление группы не отменяет начисленное.
	removed, err := env.registry.Delete(env.ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 1, env.ledger.ReferralCount(env.ctx, "U1"))
	entry, _ := env.ledger.Entry(env.ctx, "U2")
	assert.Contains(t, entry.CompletedDestinations, b.ID)
}

func TestDeletingDestinationLowersThreshold(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A", "B", "C")
	_, err := env.ledger.Register(env.ctx, "U", "R")
	require.NoError(t, err)

	assert.Equal(t, models.JoinNotYetCounted, env.join(t, "U", dests[0].ID))
	_, err = env.registry.Delete(env.ctx, dests[2].ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinCounted, env.join(t, "U", dests[1].ID))
}

func TestNoReferrerCompletionGrantsNothing(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A")
	_, err := env.ledger.Register(env.ctx, "U", "")
	require.NoError(t, err)

	assert.Equal(t, models.JoinCounted, env.join(t, "U", dests[0].ID))
	assert.Equal(t, 0, env.ledger.TotalReferralCredits(env.ctx))
	assert.Equal(t, 1, env.ledger.TotalCompleted(env.ctx))
}

func TestStatsOrderingAndTotals(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	env := newLedgerEnvWithStore(NewStoreWithClock(NewMemoryBackend(), func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))
	dests := env.addDestinations(t, "A")

	for _, u := range []string{"alpha", "beta", "top", "zero"} {
		_, err := env.ledger.Register(env.ctx, u, "")
		require.NoError(t, err)
	}
	// top: 2 очка, alpha и beta по одному.
	for i, ref := range []string{"top", "top", "alpha", "beta"} {
		uid := fmt.Sprintf("friend%d", i)
		_, err := env.ledger.Register(env.ctx, uid, ref)
		require.NoError(t, err)
		env.join(t, uid, dests[0].ID)
	}

	stats := env.ledger.Stats(env.ctx)
	require.Len(t, stats, 8)
	assert.Equal(t, "top", stats[0].UserID)
	assert.Equal(t, "alpha", stats[1].UserID, "equal counts ordered by joined_at")
	assert.Equal(t, "beta", stats[2].UserID)
	for i := 1; i < len(stats); i++ {
		assert.GreaterOrEqual(t, stats[i-1].ReferralCount, stats[i].ReferralCount)
	}

	top := env.ledger.Leaderboard(env.ctx, 2)
	require.Len(t, top, 2)
	assert.Equal(t, []string{"top", "alpha"}, []string{top[0].UserID, top[1].UserID})
	assert.Len(t, env.ledger.Leaderboard(env.ctx, 10), 3, "zero counts are excluded")

	totals := env.ledger.Totals(env.ctx)
	assert.Equal(t, models.ReferralTotals{Users: 8, Completed: 4, Credits: 4}, totals)
	assert.Equal(t, 8, env.ledger.TotalUsers(env.ctx))
}

func TestResetAllCounts(t *testing.T) {
	env := newLedgerEnv(t)
	dests := env.addDestinations(t, "A")
	_, err := env.ledger.Register(env.ctx, "U", "R")
	require.NoError(t, err)
	env.join(t, "U", dests[0].ID)

	reset, err := env.ledger.ResetAllCounts(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reset)
	assert.Equal(t, 0, env.ledger.ReferralCount(env.ctx, "R"))

	entry, _ := env.ledger.Entry(env.ctx, "U")
	assert.True(t, entry.HasCompleted)
	assert.Equal(t, []string{dests[0].ID}, entry.CompletedDestinations)

	// Сброс не дает засчитать пользователя повторно.
	assert.Equal(t, models.JoinAlreadyCounted, env.join(t, "U", dests[0].ID))
	assert.Equal(t, 0, env.ledger.ReferralCount(env.ctx, "R"))

	reset, err = env.ledger.ResetAllCounts(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, reset)
}

func TestReferralCountUnknownUser(t *testing.T) {
	env := newLedgerEnv(t)
	assert.Equal(t, 0, env.ledger.ReferralCount(env.ctx, "nobody"))
	_, ok := env.ledger.Entry(env.ctx, "nobody")
	assert.False(t, ok)
}
