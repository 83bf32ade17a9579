package repo

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Postgres implementa a persistência de competições, times, fixtures,
// apostas e contas num único banco transacional
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// isUniqueViolation detecta corrida de criação concorrente (chave natural já
// inserida por outro tick); o chamador relê em vez de propagar o erro
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
