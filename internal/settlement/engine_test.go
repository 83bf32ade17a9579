package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mooneden/newbet/internal/domain"
	"github.com/mooneden/newbet/pkg/contracts/events"
)

// fakeStore reproduz em memória o contrato do repositório: resolve com guard
// de PENDING e credita saldo junto com a escrita do desfecho
type fakeStore struct {
	bets     map[string]*domain.Bet
	balances map[int64]decimal.Decimal

	failResolve map[string]error // simula falha transacional por aposta
	resolves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bets:        map[string]*domain.Bet{},
		balances:    map[int64]decimal.Decimal{},
		failResolve: map[string]error{},
	}
}

func (s *fakeStore) add(b domain.Bet) {
	cp := b
	s.bets[b.ID] = &cp
	if _, ok := s.balances[b.UserID]; !ok {
		s.balances[b.UserID] = decimal.Zero
	}
}

func (s *fakeStore) PendingBetsByFixture(_ context.Context, fixtureID int64) ([]domain.Bet, error) {
	var out []domain.Bet
	for _, b := range s.bets {
		if b.FixtureID == fixtureID && b.Result == domain.BetPending {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeStore) ResolveBet(_ context.Context, betID string, outcome domain.BetOutcome, payout decimal.Decimal) (bool, error) {
	if err := s.failResolve[betID]; err != nil {
		return false, err
	}
	s.resolves++
	b, ok := s.bets[betID]
	if !ok {
		return false, errors.New("not found")
	}
	if b.Result != domain.BetPending {
		return false, nil
	}
	b.Result = outcome
	if outcome == domain.BetWon {
		s.balances[b.UserID] = s.balances[b.UserID].Add(payout)
	}
	return true, nil
}

type fakePublisher struct{ settled []events.BetSettled }

func (p *fakePublisher) PublishBetSettled(_ context.Context, e events.BetSettled) error {
	p.settled = append(p.settled, e)
	return nil
}

func finishedFixture(id int64, goalsHome, goalsAway int) *domain.Fixture {
	return &domain.Fixture{
		ID:        id,
		Status:    domain.StatusFinished,
		GoalsHome: &goalsHome,
		GoalsAway: &goalsAway,
		Result:    domain.ResultFromScore(goalsHome, goalsAway),
		Date:      time.Now(),
	}
}

func pendingBet(id string, user int64, fixture int64, bt domain.BetType, amount, course string) domain.Bet {
	return domain.Bet{
		ID:        id,
		UserID:    user,
		FixtureID: fixture,
		BetType:   bt,
		Amount:    decimal.RequireFromString(amount),
		Course:    decimal.RequireFromString(course),
		Result:    domain.BetPending,
	}
}

func TestSettle_WinCreditsExactPayout(t *testing.T) {
	store := newFakeStore()
	store.add(pendingBet("b1", 7, 1, domain.BetHomeWin, "10.00", "1.85"))

	eng := NewEngine(zap.NewNop(), store, nil)
	require.NoError(t, eng.Settle(context.Background(), finishedFixture(1, 2, 1)))

	assert.Equal(t, domain.BetWon, store.bets["b1"].Result)
	assert.True(t, store.balances[7].Equal(decimal.RequireFromString("18.50")),
		"saldo %s", store.balances[7])
}

func TestSettle_LossLeavesBalanceUntouched(t *testing.T) {
	store := newFakeStore()
	store.add(pendingBet("b1", 7, 1, domain.BetAwayWin, "10.00", "5.00"))

	eng := NewEngine(zap.NewNop(), store, nil)
	require.NoError(t, eng.Settle(context.Background(), finishedFixture(1, 2, 1)))

	assert.Equal(t, domain.BetLost, store.bets["b1"].Result)
	assert.True(t, store.balances[7].IsZero())
}

func TestSettle_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.add(pendingBet("b1", 7, 1, domain.BetHomeWin, "10.00", "1.85"))
	store.add(pendingBet("b2", 8, 1, domain.BetDraw, "5.00", "3.20"))

	eng := NewEngine(zap.NewNop(), store, nil)
	f := finishedFixture(1, 2, 1)

	require.NoError(t, eng.Settle(context.Background(), f))
	balanceAfterFirst := store.balances[7]

	// segunda passada: mesmos desfechos, nenhum crédito extra
	require.NoError(t, eng.Settle(context.Background(), f))

	assert.True(t, store.balances[7].Equal(balanceAfterFirst))
	assert.Equal(t, domain.BetWon, store.bets["b1"].Result)
	assert.Equal(t, domain.BetLost, store.bets["b2"].Result)
}

func TestSettle_Preconditions(t *testing.T) {
	eng := NewEngine(zap.NewNop(), newFakeStore(), nil)

	live := finishedFixture(1, 1, 0)
	live.Status = domain.StatusLive
	assert.ErrorIs(t, eng.Settle(context.Background(), live), ErrNotFinished)

	noResult := finishedFixture(1, 1, 0)
	noResult.Result = domain.ResultUnset
	assert.ErrorIs(t, eng.Settle(context.Background(), noResult), ErrNoResult)

	noScore := finishedFixture(1, 1, 0)
	noScore.GoalsHome = nil
	assert.ErrorIs(t, eng.Settle(context.Background(), noScore), ErrNoResult)
}

func TestSettle_ResolveFailureLeavesBetPendingForRetry(t *testing.T) {
	store := newFakeStore()
	store.add(pendingBet("b1", 7, 1, domain.BetHomeWin, "10.00", "1.85"))
	store.add(pendingBet("b2", 8, 1, domain.BetHomeWin, "4.00", "2.00"))
	store.failResolve["b1"] = errors.New("deadlock")

	eng := NewEngine(zap.NewNop(), store, nil)
	require.NoError(t, eng.Settle(context.Background(), finishedFixture(1, 1, 0)))

	// b1 segue PENDING para o próximo tick; b2 foi resolvida normalmente
	assert.Equal(t, domain.BetPending, store.bets["b1"].Result)
	assert.Equal(t, domain.BetWon, store.bets["b2"].Result)

	// retry liquida b1 sem tocar de novo em b2
	delete(store.failResolve, "b1")
	require.NoError(t, eng.Settle(context.Background(), finishedFixture(1, 1, 0)))
	assert.Equal(t, domain.BetWon, store.bets["b1"].Result)
	assert.True(t, store.balances[8].Equal(decimal.RequireFromString("8.00")))
}

func TestSettle_PublishesSettledEvents(t *testing.T) {
	store := newFakeStore()
	store.add(pendingBet("b1", 7, 1, domain.BetHomeWin, "10.00", "1.85"))

	publ := &fakePublisher{}
	eng := NewEngine(zap.NewNop(), store, publ)
	require.NoError(t, eng.Settle(context.Background(), finishedFixture(1, 3, 0)))

	require.Len(t, publ.settled, 1)
	assert.Equal(t, "WON", publ.settled[0].Outcome)
	assert.Equal(t, "18.50", publ.settled[0].Payout)
}

func TestEvaluate_CoreMarkets(t *testing.T) {
	cases := []struct {
		name                 string
		bt                   domain.BetType
		goalsHome, goalsAway int
		want                 domain.BetOutcome
	}{
		{"casa vence e aposta casa", domain.BetHomeWin, 2, 1, domain.BetWon},
		{"casa vence e aposta fora", domain.BetAwayWin, 2, 1, domain.BetLost},
		{"empate e aposta empate", domain.BetDraw, 1, 1, domain.BetWon},
		{"fora vence e aposta fora", domain.BetAwayWin, 0, 2, domain.BetWon},
		{"empate e aposta casa", domain.BetHomeWin, 0, 0, domain.BetLost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.bt, domain.ResultFromScore(tc.goalsHome, tc.goalsAway),
				tc.goalsHome, tc.goalsAway)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_ExtendedMarkets(t *testing.T) {
	cases := []struct {
		name                 string
		bt                   domain.BetType
		goalsHome, goalsAway int
		want                 domain.BetOutcome
	}{
		{"over com 3 gols", domain.BetOver25, 2, 1, domain.BetWon},
		{"over com 2 gols", domain.BetOver25, 1, 1, domain.BetLost},
		{"under com 2 gols", domain.BetUnder25, 2, 0, domain.BetWon},
		{"under com 3 gols", domain.BetUnder25, 2, 1, domain.BetLost},
		{"ambas marcam", domain.BetBothScore, 1, 2, domain.BetWon},
		{"ambas marcam sem gol fora", domain.BetBothScore, 3, 0, domain.BetLost},
		{"dupla chance em vitoria da casa", domain.BetDoubleChance, 2, 0, domain.BetWon},
		{"dupla chance em empate", domain.BetDoubleChance, 1, 1, domain.BetWon},
		{"dupla chance em vitoria fora", domain.BetDoubleChance, 0, 1, domain.BetLost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.bt, domain.ResultFromScore(tc.goalsHome, tc.goalsAway),
				tc.goalsHome, tc.goalsAway)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_UnknownMarket(t *testing.T) {
	_, err := Evaluate(domain.BetType(99), domain.ResultHomeWin, 1, 0)
	assert.Error(t, err)
}
