package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mooneden/newbet/internal/domain"
)

// CreateBet insere uma aposta PENDING com a odd congelada
func (p *Postgres) CreateBet(ctx context.Context, b *domain.Bet) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, fixture_id, bet_type, amount, course, result, bookmaker)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, b.UserID, b.FixtureID, int(b.BetType), b.Amount, b.Course,
		int(domain.BetPending), b.Bookmaker,
	)
	if err != nil {
		return "", err
	}
	b.ID = id
	return id, nil
}

// BetByID carrega uma aposta
func (p *Postgres) BetByID(ctx context.Context, id string) (*domain.Bet, error) {
	b, err := scanBet(p.db.QueryRowContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: bet %s", ErrNotFound, id)
	}
	return b, err
}

// PendingBetsByFixture lista as apostas ainda não liquidadas de uma fixture
func (p *Postgres) PendingBetsByFixture(ctx context.Context, fixtureID int64) ([]domain.Bet, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE fixture_id=$1 AND result=$2 ORDER BY placed_at`,
		fixtureID, int(domain.BetPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ResolveBet grava o desfecho da aposta e, em caso de vitória, credita o
// payout na conta do dono na mesma transação, para que nunca exista WON
// persistido sem o crédito correspondente.
// O guard result=PENDING torna a operação idempotente por aposta: numa
// segunda chamada nenhuma linha é afetada e nada é creditado.
func (p *Postgres) ResolveBet(ctx context.Context, betID string, outcome domain.BetOutcome, payout decimal.Decimal) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var userID int64
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM bets WHERE id=$1 FOR UPDATE`, betID,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("%w: bet %s", ErrNotFound, betID)
	}
	if err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bets SET result=$1 WHERE id=$2 AND result=$3`,
		int(outcome), betID, int(domain.BetPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		// já liquidada por uma passada anterior
		return false, nil
	}

	if outcome == domain.BetWon {
		if _, err := tx.ExecContext(ctx,
			`UPDATE app_users SET cash = cash + $1 WHERE id=$2`,
			payout, userID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

const betColumns = `id, user_id, fixture_id, bet_type, amount, course, result, bookmaker, placed_at`

func scanBet(row interface{ Scan(...any) error }) (*domain.Bet, error) {
	var b domain.Bet
	var betType, result int
	err := row.Scan(&b.ID, &b.UserID, &b.FixtureID, &betType,
		&b.Amount, &b.Course, &result, &b.Bookmaker, &b.PlacedAt)
	if err != nil {
		return nil, err
	}
	b.BetType = domain.BetType(betType)
	b.Result = domain.BetOutcome(result)
	return &b, nil
}
