package repo

import (
	"context"

	"github.com/mooneden/newbet/internal/domain"
)

// UpsertCompetition cria a competição no primeiro sync e atualiza os campos
// de temporada nos resyncs seguintes. Chave natural: api_id.
func (p *Postgres) UpsertCompetition(ctx context.Context, c *domain.Competition) (int64, error) {
	const q = `
		INSERT INTO competitions
		  (api_id, caption, league, year, number_of_matchdays, number_of_teams, current_matchday)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (api_id) DO UPDATE SET
		  number_of_matchdays = EXCLUDED.number_of_matchdays,
		  number_of_teams     = EXCLUDED.number_of_teams,
		  current_matchday    = EXCLUDED.current_matchday
		RETURNING id
	`
	var id int64
	err := p.db.QueryRowContext(ctx, q,
		c.APIID, c.Caption, c.League, c.Year,
		c.NumberOfMatchdays, c.NumberOfTeams, c.CurrentMatchday,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

// Competitions lista todas as competições sincronizadas
func (p *Postgres) Competitions(ctx context.Context) ([]domain.Competition, error) {
	const q = `
		SELECT id, api_id, caption, league, year,
		       number_of_matchdays, number_of_teams, current_matchday
		FROM competitions
		ORDER BY id
	`
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Competition
	for rows.Next() {
		var c domain.Competition
		if err := rows.Scan(&c.ID, &c.APIID, &c.Caption, &c.League, &c.Year,
			&c.NumberOfMatchdays, &c.NumberOfTeams, &c.CurrentMatchday); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
