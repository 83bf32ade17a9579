package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mooneden/newbet/internal/betapi/dto"
	"github.com/mooneden/newbet/internal/betting"
	"github.com/mooneden/newbet/internal/domain"
	"github.com/mooneden/newbet/internal/repo"
)

// Service é o recorte do serviço de apostas usado pelo handler
type Service interface {
	Place(ctx context.Context, req betting.Request) (*domain.Bet, error)
	Get(ctx context.Context, id string) (*domain.Bet, error)
}

// Catalog é o recorte de leitura do banco para as telas de navegação
type Catalog interface {
	Competitions(ctx context.Context) ([]domain.Competition, error)
	ScheduledByCompetition(ctx context.Context, competitionID int64) ([]domain.Fixture, error)
	TeamsByCompetition(ctx context.Context, competitionID int64) ([]domain.Team, error)
	UserByID(ctx context.Context, id int64) (*domain.AppUser, error)
}

// RankReader lê a classificação congelada por rodada
type RankReader interface {
	Rank(ctx context.Context, competitionID, teamID int64, matchday int) (int, bool, error)
}

type Server struct {
	log     *zap.Logger
	svc     Service
	catalog Catalog
	ranks   RankReader
}

func NewServer(log *zap.Logger, svc Service, catalog Catalog, ranks RankReader) *Server {
	return &Server{log: log, svc: svc, catalog: catalog, ranks: ranks}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.placeBet)               // POST
	mux.HandleFunc("/bets/", s.getBet)                // GET /bets/{id}
	mux.HandleFunc("/competitions", s.competitions)   // GET
	mux.HandleFunc("/competitions/", s.competitionIn) // GET /competitions/{id}/fixtures | /table
	mux.HandleFunc("/users/", s.getUser)              // GET /users/{id}
	return mux
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	course, err := decimal.NewFromString(req.Course)
	if err != nil {
		http.Error(w, "invalid course", http.StatusBadRequest)
		return
	}

	bet, err := s.svc.Place(r.Context(), betting.Request{
		UserID:    req.UserID,
		FixtureID: req.FixtureID,
		BetType:   domain.BetType(req.BetType),
		Amount:    amount,
		Course:    course,
		Bookmaker: req.Bookmaker,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{
		BetID:  bet.ID,
		Status: bet.Result.String(),
	})
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// path: /bets/{id}
	id := strings.TrimPrefix(r.URL.Path, "/bets/")
	if id == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	bet, err := s.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.log.Error("get bet failed", zap.String("betId", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.BetResponse{
		BetID:     bet.ID,
		FixtureID: bet.FixtureID,
		BetType:   int(bet.BetType),
		Amount:    bet.Amount.StringFixed(2),
		Course:    bet.Course.StringFixed(2),
		Status:    bet.Result.String(),
		Bookmaker: bet.Bookmaker,
	})
}

func (s *Server) competitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	comps, err := s.catalog.Competitions(r.Context())
	if err != nil {
		s.log.Error("list competitions failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]dto.CompetitionResponse, 0, len(comps))
	for _, c := range comps {
		out = append(out, dto.CompetitionResponse{
			ID:              c.ID,
			Caption:         c.Caption,
			League:          c.League,
			Year:            c.Year,
			CurrentMatchday: c.CurrentMatchday,
			Matchdays:       c.NumberOfMatchdays,
			Teams:           c.NumberOfTeams,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// competitionIn despacha /competitions/{id}/fixtures e /competitions/{id}/table
func (s *Server) competitionIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/competitions/"), "/")
	if len(parts) != 2 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "invalid competition id", http.StatusBadRequest)
		return
	}

	switch parts[1] {
	case "fixtures":
		s.competitionFixtures(w, r, id)
	case "table":
		s.competitionTable(w, r, id)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) competitionFixtures(w http.ResponseWriter, r *http.Request, competitionID int64) {
	fixtures, err := s.catalog.ScheduledByCompetition(r.Context(), competitionID)
	if err != nil {
		s.log.Error("list fixtures failed", zap.Int64("competitionId", competitionID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]dto.FixtureResponse, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, dto.FixtureResponse{
			ID:            f.ID,
			HomeTeamID:    f.HomeTeamID,
			AwayTeamID:    f.AwayTeamID,
			Matchday:      f.Matchday,
			Date:          f.Date,
			Status:        f.Status.String(),
			CourseHomeWin: f.CourseHomeWin,
			CourseDraw:    f.CourseDraw,
			CourseAwayWin: f.CourseAwayWin,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// competitionTable devolve a classificação congelada da rodada pedida
// (?matchday=N; default: rodada corrente da competição). Times sem posição
// gravada ficam de fora.
func (s *Server) competitionTable(w http.ResponseWriter, r *http.Request, competitionID int64) {
	matchday, err := s.tableMatchday(r, competitionID)
	if err != nil {
		http.Error(w, "invalid matchday", http.StatusBadRequest)
		return
	}

	teams, err := s.catalog.TeamsByCompetition(r.Context(), competitionID)
	if err != nil {
		s.log.Error("list teams failed", zap.Int64("competitionId", competitionID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	rows := make([]dto.StandingResponse, 0, len(teams))
	for _, t := range teams {
		rank, ok, err := s.ranks.Rank(r.Context(), competitionID, t.ID, matchday)
		if err != nil {
			s.log.Error("rank read failed", zap.Int64("teamId", t.ID), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			continue
		}
		rows = append(rows, dto.StandingResponse{
			Rank:     rank,
			TeamID:   t.ID,
			Team:     t.Name,
			Matchday: matchday,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) tableMatchday(r *http.Request, competitionID int64) (int, error) {
	if raw := r.URL.Query().Get("matchday"); raw != "" {
		md, err := strconv.Atoi(raw)
		if err != nil || md < 1 {
			return 0, errors.New("invalid matchday")
		}
		return md, nil
	}

	comps, err := s.catalog.Competitions(r.Context())
	if err != nil {
		return 0, err
	}
	for _, c := range comps {
		if c.ID == competitionID {
			return c.CurrentMatchday, nil
		}
	}
	return 1, nil
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// path: /users/{id}
	raw := strings.TrimPrefix(r.URL.Path, "/users/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	u, err := s.catalog.UserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.log.Error("get user failed", zap.Int64("userId", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserResponse{
		UserID:   u.ID,
		UserName: u.UserName,
		Cash:     u.Cash.StringFixed(2),
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, betting.ErrInvalidBet):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, betting.ErrOddsChanged):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, betting.ErrFixtureClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repo.ErrInsufficientFunds):
		http.Error(w, "insufficient funds", http.StatusPaymentRequired)
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		s.log.Error("place bet failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
