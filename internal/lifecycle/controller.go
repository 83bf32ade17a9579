package lifecycle

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mooneden/newbet/internal/domain"
	"github.com/mooneden/newbet/internal/odds"
)

// MatchState é o estado corrente de uma partida visto pelo provedor
type MatchState struct {
	Status    string // códigos do provedor: "NS","1H","HT","2H","LIVE","FT"
	Live      bool
	Finished  bool
	GoalsHome int
	GoalsAway int
	HasScore  bool
	Minute    *int
	Events    json.RawMessage
}

// MatchSource consulta o provedor externo pelo id externo da partida
type MatchSource interface {
	MatchState(ctx context.Context, apiFixtureID int64) (*MatchState, error)
}

// Store é o recorte de persistência que o ciclo de vida precisa
type Store interface {
	ScheduledDue(ctx context.Context, now time.Time) ([]domain.Fixture, error)
	FixturesByStatus(ctx context.Context, s domain.FixtureStatus) ([]domain.Fixture, error)
	FixtureByID(ctx context.Context, id int64) (*domain.Fixture, error)
	MarkLive(ctx context.Context, id int64) error
	UpdateLiveData(ctx context.Context, id int64, goalsHome, goalsAway int, minute *int, events json.RawMessage) error
	Finalize(ctx context.Context, id int64, goalsHome, goalsAway int, result domain.FixtureResult) (bool, error)
	UpdateOdds(ctx context.Context, id int64, homeWin, draw, awayWin float64, at time.Time) error
}

// Settler liquida as apostas de uma fixture encerrada
type Settler interface {
	Settle(ctx context.Context, f *domain.Fixture) error
}

// Controller avança cada fixture pela máquina de estados
// SCHEDULED -> LIVE -> FINISHED (com o salto direto SCHEDULED -> FINISHED
// quando o provedor já reporta a partida encerrada)
type Controller struct {
	log     *zap.Logger
	store   Store
	source  MatchSource
	settler Settler
	form    odds.FormSource

	OnTransition    func(to string) // métricas
	OnProviderError func()          // métricas
}

func NewController(log *zap.Logger, store Store, source MatchSource, settler Settler, form odds.FormSource) *Controller {
	return &Controller{log: log, store: store, source: source, settler: settler, form: form}
}

// AdvanceScheduled processa as fixtures agendadas cujo horário já passou.
// Sem id externo a fixture não é verificável no provedor e avança para LIVE
// por comparação de horário apenas (semântica relaxada das partidas manuais).
// Falha de provedor numa fixture não interrompe as demais.
func (c *Controller) AdvanceScheduled(ctx context.Context, now time.Time) error {
	due, err := c.store.ScheduledDue(ctx, now)
	if err != nil {
		return err
	}

	for i := range due {
		f := &due[i]

		if f.APIFixtureID == nil {
			if err := c.markLive(ctx, f.ID); err != nil {
				c.log.Warn("mark live failed", zap.Int64("fixtureId", f.ID), zap.Error(err))
			}
			continue
		}

		st, err := c.source.MatchState(ctx, *f.APIFixtureID)
		if err != nil {
			c.log.Warn("provider fetch failed, skipping fixture",
				zap.Int64("fixtureId", f.ID), zap.Error(err))
			if c.OnProviderError != nil {
				c.OnProviderError()
			}
			continue
		}

		switch {
		case st.Finished:
			if err := c.finalize(ctx, f.ID, st); err != nil {
				c.log.Error("finalize failed", zap.Int64("fixtureId", f.ID), zap.Error(err))
			}
		case st.Live:
			if err := c.markLive(ctx, f.ID); err != nil {
				c.log.Warn("mark live failed", zap.Int64("fixtureId", f.ID), zap.Error(err))
			}
		default:
			// provedor ainda não deu a partida como iniciada; segue agendada
		}
	}
	return nil
}

// RefreshLive atualiza placar, minuto e eventos das partidas LIVE e encerra
// as que o provedor já deu como finalizadas
func (c *Controller) RefreshLive(ctx context.Context) error {
	live, err := c.store.FixturesByStatus(ctx, domain.StatusLive)
	if err != nil {
		return err
	}

	for i := range live {
		f := &live[i]

		if f.APIFixtureID == nil {
			// partida manual: não há provedor para consultar; encerra por
			// atualização manual fora deste ciclo
			continue
		}

		st, err := c.source.MatchState(ctx, *f.APIFixtureID)
		if err != nil {
			c.log.Warn("provider fetch failed, skipping fixture",
				zap.Int64("fixtureId", f.ID), zap.Error(err))
			if c.OnProviderError != nil {
				c.OnProviderError()
			}
			continue
		}

		if st.Finished {
			if err := c.finalize(ctx, f.ID, st); err != nil {
				c.log.Error("finalize failed", zap.Int64("fixtureId", f.ID), zap.Error(err))
			}
			continue
		}

		if st.HasScore {
			if err := c.store.UpdateLiveData(ctx, f.ID, st.GoalsHome, st.GoalsAway, st.Minute, st.Events); err != nil {
				c.log.Warn("live update failed", zap.Int64("fixtureId", f.ID), zap.Error(err))
			}
		}
	}
	return nil
}

// RefreshOdds recalcula os três preços de toda fixture agendada a partir do
// retrospecto dos times. Sobrescrita completa, com timestamp do snapshot.
func (c *Controller) RefreshOdds(ctx context.Context, now time.Time) error {
	scheduled, err := c.store.FixturesByStatus(ctx, domain.StatusScheduled)
	if err != nil {
		return err
	}

	for i := range scheduled {
		f := &scheduled[i]
		p := odds.Compute(c.form.TeamRecord(f.HomeTeamID), c.form.TeamRecord(f.AwayTeamID))
		if err := c.store.UpdateOdds(ctx, f.ID, p.HomeWin, p.Draw, p.AwayWin, now); err != nil {
			c.log.Warn("odds update failed", zap.Int64("fixtureId", f.ID), zap.Error(err))
		}
	}
	return nil
}

func (c *Controller) markLive(ctx context.Context, id int64) error {
	if err := c.store.MarkLive(ctx, id); err != nil {
		return err
	}
	if c.OnTransition != nil {
		c.OnTransition(domain.StatusLive.String())
	}
	return nil
}

// finalize persiste placar final + resultado + FINISHED e só então invoca a
// liquidação, em passo explícito e separado, sobre o estado já durável.
// O guard do Finalize garante que uma fixture já encerrada não redispara
// efeitos de liquidação.
func (c *Controller) finalize(ctx context.Context, id int64, st *MatchState) error {
	if !st.HasScore {
		c.log.Warn("provider reported full-time without score, keeping fixture open",
			zap.Int64("fixtureId", id))
		return nil
	}

	result := domain.ResultFromScore(st.GoalsHome, st.GoalsAway)
	applied, err := c.store.Finalize(ctx, id, st.GoalsHome, st.GoalsAway, result)
	if err != nil {
		return err
	}
	if !applied {
		// transição já feita por uma passada anterior
		return nil
	}
	if c.OnTransition != nil {
		c.OnTransition(domain.StatusFinished.String())
	}

	// relê o estado pós-transição para que a liquidação nunca observe uma
	// fixture desatualizada
	f, err := c.store.FixtureByID(ctx, id)
	if err != nil {
		return err
	}
	return c.settler.Settle(ctx, f)
}
