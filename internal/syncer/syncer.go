package syncer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mooneden/newbet/internal/domain"
	"github.com/mooneden/newbet/internal/odds"
	"github.com/mooneden/newbet/internal/provider/sportsdb"
)

// League é uma liga configurada para acompanhamento
type League struct {
	APIID int
	Name  string
}

// Provider é o recorte do cliente do provedor que o resync usa
type Provider interface {
	Leagues(ctx context.Context) ([]sportsdb.League, error)
	Teams(ctx context.Context, leagueName string) ([]sportsdb.Team, error)
	Events(ctx context.Context, leagueID int) ([]sportsdb.Event, error)
	Table(ctx context.Context, leagueID int, season string) ([]sportsdb.TableRow, error)
}

// Store é o recorte de persistência do resync
type Store interface {
	UpsertCompetition(ctx context.Context, c *domain.Competition) (int64, error)
	GetOrCreateTeam(ctx context.Context, t *domain.Team) (int64, error)
	GetOrCreateFixture(ctx context.Context, f *domain.Fixture) (int64, bool, error)
	TeamsByCompetition(ctx context.Context, competitionID int64) ([]domain.Team, error)
}

// RankStore grava a classificação por rodada (write-if-absent)
type RankStore interface {
	SetRank(ctx context.Context, competitionID, teamID int64, matchday, rank int) error
}

// Syncer ressincroniza competições, times, fixtures e classificação a partir
// do provedor. Cada liga é isolada: falha numa não aborta as demais.
type Syncer struct {
	log      *zap.Logger
	store    Store
	provider Provider
	ranks    RankStore
	form     odds.FormSource
	season   string
	leagues  []League

	Now func() time.Time // injetável em teste
}

func New(log *zap.Logger, store Store, provider Provider, ranks RankStore, form odds.FormSource, season string, leagues []League) *Syncer {
	return &Syncer{
		log:      log,
		store:    store,
		provider: provider,
		ranks:    ranks,
		form:     form,
		season:   season,
		leagues:  leagues,
		Now:      time.Now,
	}
}

// Resync processa todas as ligas configuradas. O nome oficial da liga no
// provedor prevalece sobre o configurado quando os dois divergem.
func (s *Syncer) Resync(ctx context.Context) error {
	names := s.providerLeagueNames(ctx)
	for _, lg := range s.leagues {
		if name, ok := names[lg.APIID]; ok {
			lg.Name = name
		}
		if err := s.syncLeague(ctx, lg); err != nil {
			s.log.Warn("league resync failed, skipping",
				zap.Int("leagueId", lg.APIID), zap.String("league", lg.Name), zap.Error(err))
		}
	}
	return nil
}

// providerLeagueNames mapeia id -> nome oficial. Falha aqui não impede o
// resync: seguimos com os nomes configurados.
func (s *Syncer) providerLeagueNames(ctx context.Context) map[int]string {
	leagues, err := s.provider.Leagues(ctx)
	if err != nil {
		s.log.Warn("league listing failed, using configured names", zap.Error(err))
		return nil
	}
	names := make(map[int]string, len(leagues))
	for _, l := range leagues {
		if l.ID() > 0 && l.StrLeague != "" {
			names[l.ID()] = l.StrLeague
		}
	}
	return names
}

func (s *Syncer) syncLeague(ctx context.Context, lg League) error {
	teams, err := s.provider.Teams(ctx, lg.Name)
	if err != nil {
		return fmt.Errorf("fetch teams: %w", err)
	}
	events, err := s.provider.Events(ctx, lg.APIID)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}

	comp := &domain.Competition{
		APIID:             lg.APIID,
		Caption:           lg.Name,
		League:            shortCode(lg.Name),
		Year:              seasonYear(s.season),
		NumberOfMatchdays: maxRound(events),
		NumberOfTeams:     len(teams),
		CurrentMatchday:   currentRound(events, s.Now()),
	}
	if _, err := s.store.UpsertCompetition(ctx, comp); err != nil {
		return fmt.Errorf("upsert competition: %w", err)
	}

	teamIDs := make(map[string]int64, len(teams))
	for _, t := range teams {
		dt := &domain.Team{
			Name:          t.StrTeam,
			CrestURL:      t.StrTeamBadge,
			ShortName:     shortName(t),
			Code:          teamCode(t),
			CompetitionID: comp.ID,
		}
		id, err := s.store.GetOrCreateTeam(ctx, dt)
		if err != nil {
			s.log.Warn("team create failed", zap.String("team", t.StrTeam), zap.Error(err))
			continue
		}
		teamIDs[t.StrTeam] = id
	}

	for _, ev := range events {
		if err := s.syncFixture(ctx, comp, teamIDs, ev); err != nil {
			s.log.Warn("fixture sync failed",
				zap.String("home", ev.StrHomeTeam), zap.String("away", ev.StrAwayTeam), zap.Error(err))
		}
	}

	s.syncStandings(ctx, lg, comp)
	return nil
}

func (s *Syncer) syncFixture(ctx context.Context, comp *domain.Competition, teamIDs map[string]int64, ev sportsdb.Event) error {
	homeID, okH := teamIDs[ev.StrHomeTeam]
	awayID, okA := teamIDs[ev.StrAwayTeam]
	if !okH || !okA {
		return fmt.Errorf("unknown team in event %s x %s", ev.StrHomeTeam, ev.StrAwayTeam)
	}

	date, err := eventDate(ev)
	if err != nil {
		return err
	}

	matchday := ev.Round()
	if matchday == 0 {
		matchday = 1
	}

	// preços calculados na criação; depois só o RefreshOdds os sobrescreve
	p := odds.Compute(s.form.TeamRecord(homeID), s.form.TeamRecord(awayID))

	f := &domain.Fixture{
		HomeTeamID:    homeID,
		AwayTeamID:    awayID,
		CompetitionID: comp.ID,
		Matchday:      matchday,
		Date:          date,
		CourseHomeWin: p.HomeWin,
		CourseDraw:    p.Draw,
		CourseAwayWin: p.AwayWin,
		Result:        domain.ResultUnset,
	}
	if id := ev.ID(); id > 0 {
		f.APIFixtureID = &id
	}
	_, _, err = s.store.GetOrCreateFixture(ctx, f)
	return err
}

// syncStandings grava a posição de cada time na rodada corrente. Com a
// tabela do provedor indisponível, cai na enumeração local (posição pela
// ordem dos times) para a rodada nunca ficar sem classificação.
func (s *Syncer) syncStandings(ctx context.Context, lg League, comp *domain.Competition) {
	local, err := s.store.TeamsByCompetition(ctx, comp.ID)
	if err != nil {
		s.log.Warn("standings: load teams failed", zap.Int64("competitionId", comp.ID), zap.Error(err))
		return
	}
	byName := make(map[string]int64, len(local))
	for _, t := range local {
		byName[t.Name] = t.ID
	}

	matchday := comp.CurrentMatchday

	table, err := s.provider.Table(ctx, lg.APIID, s.season)
	if err != nil {
		s.log.Warn("standings: table fetch failed, using local order",
			zap.Int("leagueId", lg.APIID), zap.Error(err))
		for i, t := range local {
			s.setRank(ctx, comp.ID, t.ID, matchday, i+1)
		}
		return
	}

	for _, row := range table {
		teamID, ok := byName[row.StrTeam]
		if !ok {
			continue
		}
		s.setRank(ctx, comp.ID, teamID, matchday, row.Rank())
	}
}

func (s *Syncer) setRank(ctx context.Context, compID, teamID int64, matchday, rank int) {
	if err := s.ranks.SetRank(ctx, compID, teamID, matchday, rank); err != nil {
		s.log.Warn("standings: rank write failed",
			zap.Int64("teamId", teamID), zap.Int("matchday", matchday), zap.Error(err))
	}
}

// eventDate monta o horário da partida; sem strTime assume 15:00 UTC
func eventDate(ev sportsdb.Event) (time.Time, error) {
	t := ev.StrTime
	if t == "" {
		t = "15:00:00"
	}
	return time.Parse("2006-01-02 15:04:05", ev.DateEvent+" "+t)
}

// currentRound é a rodada da última partida já disputada (ou 1)
func currentRound(events []sportsdb.Event, now time.Time) int {
	round := 1
	for _, ev := range events {
		d, err := eventDate(ev)
		if err != nil {
			continue
		}
		if !d.After(now) && ev.Round() > round {
			round = ev.Round()
		}
	}
	return round
}

// maxRound é o total de rodadas da temporada (38 quando o provedor não
// informa rodadas)
func maxRound(events []sportsdb.Event) int {
	max := 0
	for _, ev := range events {
		if ev.Round() > max {
			max = ev.Round()
		}
	}
	if max == 0 {
		return 38
	}
	return max
}

func seasonYear(season string) int {
	var y int
	_, _ = fmt.Sscanf(season, "%d", &y)
	return y
}

func shortCode(name string) string {
	if len(name) > 12 {
		return name[:12]
	}
	return name
}

func shortName(t sportsdb.Team) string {
	if t.StrTeamShort != "" {
		return t.StrTeamShort
	}
	if len(t.StrTeam) > 10 {
		return t.StrTeam[:10]
	}
	return t.StrTeam
}

func teamCode(t sportsdb.Team) string {
	if t.StrTeamShort != "" {
		return t.StrTeamShort
	}
	n := t.StrTeam
	if len(n) > 3 {
		n = n[:3]
	}
	return n
}
