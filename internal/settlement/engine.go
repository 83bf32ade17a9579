package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mooneden/newbet/internal/domain"
	"github.com/mooneden/newbet/pkg/contracts/events"
)

// Store é o recorte de persistência que a liquidação precisa
type Store interface {
	PendingBetsByFixture(ctx context.Context, fixtureID int64) ([]domain.Bet, error)
	// ResolveBet grava o desfecho e credita o payout atomicamente; retorna
	// false quando a aposta já não estava PENDING
	ResolveBet(ctx context.Context, betID string, outcome domain.BetOutcome, payout decimal.Decimal) (bool, error)
}

// Publisher emite eventos de liquidação (fire-and-forget)
type Publisher interface {
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
}

var (
	ErrNotFinished = errors.New("settlement: fixture is not finished")
	ErrNoResult    = errors.New("settlement: fixture has no result code")
)

// Engine liquida todas as apostas abertas de uma fixture encerrada,
// creditando vencedores exatamente uma vez
type Engine struct {
	log   *zap.Logger
	store Store
	publ  Publisher // opcional

	OnSettled func(outcome string) // métricas
}

func NewEngine(log *zap.Logger, store Store, publ Publisher) *Engine {
	return &Engine{log: log, store: store, publ: publ}
}

// Settle resolve cada aposta PENDING da fixture. Idempotente por aposta:
// apostas já liquidadas são no-ops no guard transacional do Store, então uma
// segunda invocação (ou retomada após crash no meio da passada) é segura.
// Erro de avaliação de uma aposta não derruba a passada: a aposta fica
// PENDING para o próximo tick.
func (e *Engine) Settle(ctx context.Context, f *domain.Fixture) error {
	if f.Status != domain.StatusFinished {
		return fmt.Errorf("%w: fixture %d status %s", ErrNotFinished, f.ID, f.Status)
	}
	if f.Result == domain.ResultUnset || f.GoalsHome == nil || f.GoalsAway == nil {
		return fmt.Errorf("%w: fixture %d", ErrNoResult, f.ID)
	}

	bets, err := e.store.PendingBetsByFixture(ctx, f.ID)
	if err != nil {
		return fmt.Errorf("load pending bets of fixture %d: %w", f.ID, err)
	}

	for i := range bets {
		b := &bets[i]

		outcome, err := Evaluate(b.BetType, f.Result, *f.GoalsHome, *f.GoalsAway)
		if err != nil {
			// nunca marca WON/LOST num erro de avaliação
			e.log.Error("bet predicate failed, left pending",
				zap.String("betId", b.ID), zap.Int("betType", int(b.BetType)), zap.Error(err))
			continue
		}

		payout := decimal.Zero
		if outcome == domain.BetWon {
			payout = b.Payout()
		}

		applied, err := e.store.ResolveBet(ctx, b.ID, outcome, payout)
		if err != nil {
			e.log.Error("bet resolve failed, left pending",
				zap.String("betId", b.ID), zap.Error(err))
			continue
		}
		if !applied {
			continue // outra passada chegou antes
		}

		if e.OnSettled != nil {
			e.OnSettled(outcome.String())
		}
		e.publish(ctx, b, f, outcome, payout)
	}
	return nil
}

// Evaluate decide o desfecho de um mercado contra o resultado final.
// Linha do over/under é 2.5; dupla chance cobre 1X (casa ou empate).
func Evaluate(bt domain.BetType, result domain.FixtureResult, goalsHome, goalsAway int) (domain.BetOutcome, error) {
	won := false
	switch bt {
	case domain.BetHomeWin, domain.BetDraw, domain.BetAwayWin:
		won = domain.FixtureResult(bt) == result
	case domain.BetOver25:
		won = goalsHome+goalsAway >= 3
	case domain.BetUnder25:
		won = goalsHome+goalsAway <= 2
	case domain.BetBothScore:
		won = goalsHome > 0 && goalsAway > 0
	case domain.BetDoubleChance:
		won = result != domain.ResultAwayWin
	default:
		return domain.BetPending, fmt.Errorf("unknown bet type %d", bt)
	}

	if won {
		return domain.BetWon, nil
	}
	return domain.BetLost, nil
}

func (e *Engine) publish(ctx context.Context, b *domain.Bet, f *domain.Fixture, outcome domain.BetOutcome, payout decimal.Decimal) {
	if e.publ == nil {
		return
	}
	ev := events.BetSettled{
		BetID:     b.ID,
		UserID:    b.UserID,
		FixtureID: f.ID,
		Outcome:   outcome.String(),
		Ts:        time.Now(),
	}
	if outcome == domain.BetWon {
		ev.Payout = payout.StringFixed(2)
	}
	if err := e.publ.PublishBetSettled(ctx, ev); err != nil {
		e.log.Warn("bet_settled publish failed", zap.String("betId", b.ID), zap.Error(err))
	}
}
