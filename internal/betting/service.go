package betting

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mooneden/newbet/internal/domain"
	"github.com/mooneden/newbet/pkg/contracts/events"
)

var (
	ErrFixtureClosed = errors.New("betting: fixture no longer accepts bets")
	ErrOddsChanged   = errors.New("betting: quoted odd differs from current")
	ErrInvalidBet    = errors.New("betting: invalid bet")
)

// Store é o recorte de persistência da colocação de aposta
type Store interface {
	FixtureByID(ctx context.Context, id int64) (*domain.Fixture, error)
	DebitStake(ctx context.Context, userID int64, amount decimal.Decimal) error
	CreateBet(ctx context.Context, b *domain.Bet) (string, error)
	BetByID(ctx context.Context, id string) (*domain.Bet, error)
}

// Notifier avisa a colocação da aposta (fire-and-forget)
type Notifier interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

// Service valida, debita e registra apostas
type Service struct {
	log      *zap.Logger
	store    Store
	notifier Notifier // opcional
}

func NewService(log *zap.Logger, store Store, notifier Notifier) *Service {
	return &Service{log: log, store: store, notifier: notifier}
}

// Request é o pedido de aposta já autenticado pela camada web
type Request struct {
	UserID    int64
	FixtureID int64
	BetType   domain.BetType
	Amount    decimal.Decimal
	Course    decimal.Decimal // odd que o cliente viu
	Bookmaker string
}

// Place valida a aposta contra a fixture, debita o valor e insere a aposta
// PENDING com a odd congelada. A notificação é fire-and-forget: falha dela
// não desfaz a aposta.
func (s *Service) Place(ctx context.Context, req Request) (*domain.Bet, error) {
	if !req.BetType.Valid() {
		return nil, fmt.Errorf("%w: unknown bet type %d", ErrInvalidBet, req.BetType)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive amount", ErrInvalidBet)
	}
	if !req.Course.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive course", ErrInvalidBet)
	}

	f, err := s.store.FixtureByID(ctx, req.FixtureID)
	if err != nil {
		return nil, err
	}
	if f.Status != domain.StatusScheduled {
		return nil, fmt.Errorf("%w: fixture %d is %s", ErrFixtureClosed, f.ID, f.Status)
	}

	// mercados 1x2 são cotados pela própria fixture: a odd vista pelo
	// cliente precisa bater com a corrente. Mercados estendidos vêm
	// cotados pelo bookmaker e são aceitos como enviados.
	if current, ok := f.CourseFor(req.BetType); ok {
		if !sameCourse(req.Course, current) {
			return nil, fmt.Errorf("%w: current=%.2f", ErrOddsChanged, current)
		}
	}

	if err := s.store.DebitStake(ctx, req.UserID, req.Amount); err != nil {
		return nil, err
	}

	bet := &domain.Bet{
		UserID:    req.UserID,
		FixtureID: req.FixtureID,
		BetType:   req.BetType,
		Amount:    req.Amount,
		Course:    req.Course,
		Result:    domain.BetPending,
		Bookmaker: bookmakerOrDefault(req.Bookmaker),
	}
	if _, err := s.store.CreateBet(ctx, bet); err != nil {
		return nil, err
	}

	s.notify(ctx, bet)
	return bet, nil
}

// Get devolve uma aposta existente
func (s *Service) Get(ctx context.Context, id string) (*domain.Bet, error) {
	return s.store.BetByID(ctx, id)
}

func (s *Service) notify(ctx context.Context, b *domain.Bet) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.PublishBetPlaced(ctx, events.BetPlaced{
		BetID:     b.ID,
		UserID:    b.UserID,
		FixtureID: b.FixtureID,
		BetType:   int(b.BetType),
		Amount:    b.Amount.StringFixed(2),
		Course:    b.Course.StringFixed(2),
	})
	if err != nil {
		s.log.Warn("bet_placed publish failed", zap.String("betId", b.ID), zap.Error(err))
	}
}

// sameCourse compara a odd cotada (decimal) com o preço da fixture (float
// com 2 casas) sem depender de representação binária
func sameCourse(quoted decimal.Decimal, current float64) bool {
	cents := int64(math.Round(current * 100))
	return quoted.Mul(decimal.NewFromInt(100)).Round(0).Equal(decimal.NewFromInt(cents))
}

func bookmakerOrDefault(b string) string {
	if b == "" {
		return "Custom"
	}
	return b
}
