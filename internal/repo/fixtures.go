package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mooneden/newbet/internal/domain"
)

const fixtureColumns = `
	id, home_team_id, away_team_id, competition_id, matchday, date, status,
	goals_home, goals_away, course_home_win, course_draw, course_away_win,
	result, api_fixture_id, minute, events, last_odds_update`

func scanFixture(row interface{ Scan(...any) error }) (*domain.Fixture, error) {
	var f domain.Fixture
	var status, result int
	var goalsHome, goalsAway, minute sql.NullInt64
	var apiID sql.NullInt64
	var events []byte
	var lastOdds sql.NullTime

	err := row.Scan(
		&f.ID, &f.HomeTeamID, &f.AwayTeamID, &f.CompetitionID, &f.Matchday,
		&f.Date, &status, &goalsHome, &goalsAway,
		&f.CourseHomeWin, &f.CourseDraw, &f.CourseAwayWin,
		&result, &apiID, &minute, &events, &lastOdds,
	)
	if err != nil {
		return nil, err
	}

	f.Status = domain.FixtureStatus(status)
	f.Result = domain.FixtureResult(result)
	if goalsHome.Valid {
		v := int(goalsHome.Int64)
		f.GoalsHome = &v
	}
	if goalsAway.Valid {
		v := int(goalsAway.Int64)
		f.GoalsAway = &v
	}
	if minute.Valid {
		v := int(minute.Int64)
		f.Minute = &v
	}
	if apiID.Valid {
		v := apiID.Int64
		f.APIFixtureID = &v
	}
	if len(events) > 0 {
		f.Events = json.RawMessage(events)
	}
	if lastOdds.Valid {
		t := lastOdds.Time
		f.LastOddsUpdate = &t
	}
	return &f, nil
}

// FixtureByID carrega uma fixture pelo id interno
func (p *Postgres) FixtureByID(ctx context.Context, id int64) (*domain.Fixture, error) {
	f, err := scanFixture(p.db.QueryRowContext(ctx,
		`SELECT `+fixtureColumns+` FROM fixtures WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: fixture %d", ErrNotFound, id)
	}
	return f, err
}

// GetOrCreateFixture cria a fixture se a chave natural
// (home, away, competition, date) ainda não existir
func (p *Postgres) GetOrCreateFixture(ctx context.Context, f *domain.Fixture) (int64, bool, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `
		SELECT id FROM fixtures
		WHERE home_team_id=$1 AND away_team_id=$2 AND competition_id=$3 AND date=$4`,
		f.HomeTeamID, f.AwayTeamID, f.CompetitionID, f.Date,
	).Scan(&id)
	if err == nil {
		f.ID = id
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, err
	}

	err = p.db.QueryRowContext(ctx, `
		INSERT INTO fixtures
		  (home_team_id, away_team_id, competition_id, matchday, date, status,
		   course_home_win, course_draw, course_away_win, result, api_fixture_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id`,
		f.HomeTeamID, f.AwayTeamID, f.CompetitionID, f.Matchday, f.Date,
		int(domain.StatusScheduled),
		f.CourseHomeWin, f.CourseDraw, f.CourseAwayWin,
		int(domain.ResultUnset), nullInt64(f.APIFixtureID),
	).Scan(&id)
	if isUniqueViolation(err) {
		// outro tick criou a mesma fixture no intervalo; relê
		return p.GetOrCreateFixture(ctx, f)
	}
	if err != nil {
		return 0, false, err
	}
	f.ID = id
	return id, true, nil
}

// ScheduledDue lista fixtures agendadas cujo horário já passou
func (p *Postgres) ScheduledDue(ctx context.Context, now time.Time) ([]domain.Fixture, error) {
	return p.queryFixtures(ctx,
		`SELECT `+fixtureColumns+` FROM fixtures WHERE status=$1 AND date<=$2 ORDER BY date`,
		int(domain.StatusScheduled), now)
}

// FixturesByStatus lista fixtures em um dado status
func (p *Postgres) FixturesByStatus(ctx context.Context, s domain.FixtureStatus) ([]domain.Fixture, error) {
	return p.queryFixtures(ctx,
		`SELECT `+fixtureColumns+` FROM fixtures WHERE status=$1 ORDER BY date`, int(s))
}

// ScheduledByCompetition lista fixtures agendadas de uma competição
func (p *Postgres) ScheduledByCompetition(ctx context.Context, competitionID int64) ([]domain.Fixture, error) {
	return p.queryFixtures(ctx,
		`SELECT `+fixtureColumns+` FROM fixtures WHERE status=$1 AND competition_id=$2 ORDER BY date`,
		int(domain.StatusScheduled), competitionID)
}

func (p *Postgres) queryFixtures(ctx context.Context, q string, args ...any) ([]domain.Fixture, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Fixture
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// MarkLive avança a fixture para LIVE. Só transiciona a partir de SCHEDULED;
// estados terminais nunca regridem.
func (p *Postgres) MarkLive(ctx context.Context, id int64) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE fixtures SET status=$1 WHERE id=$2 AND status=$3`,
		int(domain.StatusLive), id, int(domain.StatusScheduled))
	return err
}

// UpdateLiveData grava placar parcial, minuto e eventos de uma partida LIVE
func (p *Postgres) UpdateLiveData(ctx context.Context, id int64, goalsHome, goalsAway int, minute *int, events json.RawMessage) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE fixtures
		SET goals_home=$1, goals_away=$2, minute=$3, events=$4
		WHERE id=$5 AND status=$6`,
		goalsHome, goalsAway, nullInt(minute), []byte(events),
		id, int(domain.StatusLive))
	return err
}

// Finalize grava o placar final, o código de resultado e o status FINISHED.
// O guard de status garante idempotência: numa fixture já FINISHED nenhuma
// linha é afetada e o chamador não dispara a liquidação de novo.
func (p *Postgres) Finalize(ctx context.Context, id int64, goalsHome, goalsAway int, result domain.FixtureResult) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE fixtures
		SET goals_home=$1, goals_away=$2, result=$3, status=$4
		WHERE id=$5 AND status IN ($6,$7)`,
		goalsHome, goalsAway, int(result), int(domain.StatusFinished),
		id, int(domain.StatusScheduled), int(domain.StatusLive))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateOdds sobrescreve os três preços de uma fixture agendada e marca o
// instante do snapshot
func (p *Postgres) UpdateOdds(ctx context.Context, id int64, homeWin, draw, awayWin float64, at time.Time) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE fixtures
		SET course_home_win=$1, course_draw=$2, course_away_win=$3, last_odds_update=$4
		WHERE id=$5 AND status=$6`,
		homeWin, draw, awayWin, at, id, int(domain.StatusScheduled))
	return err
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
