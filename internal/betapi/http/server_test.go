package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mooneden/newbet/internal/betting"
	"github.com/mooneden/newbet/internal/domain"
	"github.com/mooneden/newbet/internal/repo"
)

type fakeService struct {
	placeErr error
	bets     map[string]*domain.Bet
	lastReq  betting.Request
}

func (f *fakeService) Place(_ context.Context, req betting.Request) (*domain.Bet, error) {
	f.lastReq = req
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return &domain.Bet{
		ID:        "b-1",
		UserID:    req.UserID,
		FixtureID: req.FixtureID,
		BetType:   req.BetType,
		Amount:    req.Amount,
		Course:    req.Course,
		Result:    domain.BetPending,
		Bookmaker: "Custom",
	}, nil
}

func (f *fakeService) Get(_ context.Context, id string) (*domain.Bet, error) {
	b, ok := f.bets[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return b, nil
}

type fakeCatalog struct {
	comps    []domain.Competition
	fixtures []domain.Fixture
	teams    []domain.Team
	users    map[int64]*domain.AppUser
}

func (c *fakeCatalog) Competitions(context.Context) ([]domain.Competition, error) {
	return c.comps, nil
}

func (c *fakeCatalog) ScheduledByCompetition(context.Context, int64) ([]domain.Fixture, error) {
	return c.fixtures, nil
}

func (c *fakeCatalog) TeamsByCompetition(context.Context, int64) ([]domain.Team, error) {
	return c.teams, nil
}

func (c *fakeCatalog) UserByID(_ context.Context, id int64) (*domain.AppUser, error) {
	u, ok := c.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

// fakeRanks indexa por (team, matchday); a competição é única nos testes
type fakeRanks struct {
	ranks map[int64]map[int]int
}

func (f *fakeRanks) Rank(_ context.Context, _ int64, teamID int64, matchday int) (int, bool, error) {
	r, ok := f.ranks[teamID][matchday]
	return r, ok, nil
}

func newTestServer(svc *fakeService, catalog *fakeCatalog, ranks *fakeRanks) http.Handler {
	if catalog == nil {
		catalog = &fakeCatalog{}
	}
	if ranks == nil {
		ranks = &fakeRanks{}
	}
	return NewServer(zap.NewNop(), svc, catalog, ranks).Router()
}

func doGET(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postBet(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPlaceBet_Created(t *testing.T) {
	svc := &fakeService{}
	h := newTestServer(svc, nil, nil)

	rec := postBet(t, h, `{"userId":7,"fixtureId":1,"betType":1,"amount":"10.00","course":"1.85"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		BetID  string `json:"betId"`
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "b-1", resp.BetID)
	assert.Equal(t, "PENDING", resp.Status)
	assert.True(t, svc.lastReq.Amount.Equal(decimal.RequireFromString("10.00")))
}

func TestPlaceBet_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid bet", betting.ErrInvalidBet, http.StatusBadRequest},
		{"odds changed", betting.ErrOddsChanged, http.StatusConflict},
		{"fixture closed", betting.ErrFixtureClosed, http.StatusConflict},
		{"insufficient funds", repo.ErrInsufficientFunds, http.StatusPaymentRequired},
		{"unknown fixture", repo.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(&fakeService{placeErr: tc.err}, nil, nil)
			rec := postBet(t, h, `{"userId":7,"fixtureId":1,"betType":1,"amount":"10.00","course":"1.85"}`)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestPlaceBet_BadPayload(t *testing.T) {
	h := newTestServer(&fakeService{}, nil, nil)

	assert.Equal(t, http.StatusBadRequest, postBet(t, h, `{not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postBet(t, h, `{"amount":"ten","course":"1.85"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postBet(t, h, `{"amount":"10.00","course":""}`).Code)

	assert.Equal(t, http.StatusMethodNotAllowed, doGET(t, h, "/bets").Code)
}

func TestGetBet(t *testing.T) {
	svc := &fakeService{bets: map[string]*domain.Bet{
		"b-1": {
			ID:        "b-1",
			FixtureID: 1,
			BetType:   domain.BetHomeWin,
			Amount:    decimal.RequireFromString("10.00"),
			Course:    decimal.RequireFromString("1.85"),
			Result:    domain.BetWon,
			Bookmaker: "Custom",
		},
	}}
	h := newTestServer(svc, nil, nil)

	rec := doGET(t, h, "/bets/b-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Amount string `json:"amount"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "WON", resp.Status)
	assert.Equal(t, "10.00", resp.Amount)

	assert.Equal(t, http.StatusNotFound, doGET(t, h, "/bets/missing").Code)
}

func TestListCompetitions(t *testing.T) {
	catalog := &fakeCatalog{comps: []domain.Competition{
		{ID: 1, Caption: "English Premier League", League: "PL", Year: 2024,
			CurrentMatchday: 3, NumberOfMatchdays: 38, NumberOfTeams: 20},
	}}
	h := newTestServer(&fakeService{}, catalog, nil)

	rec := doGET(t, h, "/competitions")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		Caption         string `json:"caption"`
		CurrentMatchday int    `json:"currentMatchday"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "English Premier League", resp[0].Caption)
	assert.Equal(t, 3, resp[0].CurrentMatchday)
}

func TestCompetitionFixtures(t *testing.T) {
	catalog := &fakeCatalog{fixtures: []domain.Fixture{
		{ID: 10, HomeTeamID: 1, AwayTeamID: 2, Matchday: 3,
			Date:          time.Date(2024, 9, 14, 15, 0, 0, 0, time.UTC),
			Status:        domain.StatusScheduled,
			CourseHomeWin: 2.00, CourseDraw: 3.33, CourseAwayWin: 5.00},
	}}
	h := newTestServer(&fakeService{}, catalog, nil)

	rec := doGET(t, h, "/competitions/1/fixtures")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		ID            int64   `json:"id"`
		Status        string  `json:"status"`
		CourseHomeWin float64 `json:"courseHomeWin"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, int64(10), resp[0].ID)
	assert.Equal(t, "SCHEDULED", resp[0].Status)
	assert.Equal(t, 2.00, resp[0].CourseHomeWin)

	assert.Equal(t, http.StatusBadRequest, doGET(t, h, "/competitions/x/fixtures").Code)
	assert.Equal(t, http.StatusNotFound, doGET(t, h, "/competitions/1/nope").Code)
}

func TestCompetitionTable(t *testing.T) {
	catalog := &fakeCatalog{
		comps: []domain.Competition{{ID: 1, CurrentMatchday: 2}},
		teams: []domain.Team{
			{ID: 11, Name: "Arsenal"},
			{ID: 12, Name: "Chelsea"},
			{ID: 13, Name: "Everton"}, // sem posição gravada na rodada
		},
	}
	ranks := &fakeRanks{ranks: map[int64]map[int]int{
		11: {2: 1},
		12: {2: 5},
	}}
	h := newTestServer(&fakeService{}, catalog, ranks)

	rec := doGET(t, h, "/competitions/1/table")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		Rank     int    `json:"rank"`
		Team     string `json:"team"`
		Matchday int    `json:"matchday"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2, "time sem posição fica de fora")
	assert.Equal(t, "Arsenal", resp[0].Team)
	assert.Equal(t, 1, resp[0].Rank)
	assert.Equal(t, 2, resp[0].Matchday, "default é a rodada corrente")
	assert.Equal(t, "Chelsea", resp[1].Team)

	// rodada explícita sem dados gravados
	rec = doGET(t, h, "/competitions/1/table?matchday=9")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "[]", strings.TrimSpace(body))

	assert.Equal(t, http.StatusBadRequest, doGET(t, h, "/competitions/1/table?matchday=0").Code)
}

func TestGetUser(t *testing.T) {
	catalog := &fakeCatalog{users: map[int64]*domain.AppUser{
		7: {ID: 7, UserName: "alice", Cash: decimal.RequireFromString("90.50")},
	}}
	h := newTestServer(&fakeService{}, catalog, nil)

	rec := doGET(t, h, "/users/7")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UserName string `json:"userName"`
		Cash     string `json:"cash"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice", resp.UserName)
	assert.Equal(t, "90.50", resp.Cash)

	assert.Equal(t, http.StatusNotFound, doGET(t, h, "/users/99").Code)
	assert.Equal(t, http.StatusBadRequest, doGET(t, h, "/users/abc").Code)
}
