package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mooneden/newbet/internal/domain"
)

// UserByID carrega a conta do apostador
func (p *Postgres) UserByID(ctx context.Context, id int64) (*domain.AppUser, error) {
	var u domain.AppUser
	err := p.db.QueryRowContext(ctx,
		`SELECT id, user_name, cash, bank_account_number FROM app_users WHERE id=$1`, id,
	).Scan(&u.ID, &u.UserName, &u.Cash, &u.BankAccountNumber)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DebitStake debita o valor apostado com checagem de saldo sob lock
// pessimista. Saldo nunca fica negativo.
func (p *Postgres) DebitStake(ctx context.Context, userID int64, amount decimal.Decimal) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var cash decimal.Decimal
	err = tx.QueryRowContext(ctx,
		`SELECT cash FROM app_users WHERE id=$1 FOR UPDATE`, userID,
	).Scan(&cash)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err != nil {
		return err
	}

	if cash.LessThan(amount) {
		return ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE app_users SET cash = cash - $1 WHERE id=$2`,
		amount, userID); err != nil {
		return err
	}

	return tx.Commit()
}
