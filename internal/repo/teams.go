package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mooneden/newbet/internal/domain"
)

// GetOrCreateTeam busca o time pela chave natural (name, competition) e cria
// se não existir. Corrida de criação concorrente vira releitura.
func (p *Postgres) GetOrCreateTeam(ctx context.Context, t *domain.Team) (int64, error) {
	id, err := p.teamID(ctx, t.Name, t.CompetitionID)
	if err == nil {
		t.ID = id
		return id, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	err = p.db.QueryRowContext(ctx, `
		INSERT INTO teams (name, crest_url, short_name, code, competition_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		t.Name, t.CrestURL, t.ShortName, t.Code, t.CompetitionID,
	).Scan(&id)
	if isUniqueViolation(err) {
		id, err = p.teamID(ctx, t.Name, t.CompetitionID)
	}
	if err != nil {
		return 0, err
	}
	t.ID = id
	return id, nil
}

func (p *Postgres) teamID(ctx context.Context, name string, competitionID int64) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx,
		`SELECT id FROM teams WHERE name=$1 AND competition_id=$2`,
		name, competitionID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: team %q", ErrNotFound, name)
	}
	return id, err
}

// TeamsByCompetition lista os times de uma competição
func (p *Postgres) TeamsByCompetition(ctx context.Context, competitionID int64) ([]domain.Team, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, crest_url, short_name, code, competition_id
		FROM teams
		WHERE competition_id=$1
		ORDER BY name`,
		competitionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CrestURL, &t.ShortName, &t.Code, &t.CompetitionID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
