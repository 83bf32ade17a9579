package sportsdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrFetch marca falhas de rede/HTTP do provedor. Nunca é fatal para o
// chamador: o ciclo seguinte tenta de novo.
var ErrFetch = errors.New("sportsdb fetch failed")

// ErrNotFound indica que o provedor não conhece o recurso pedido
var ErrNotFound = errors.New("sportsdb: not found")

// Client acessa a API JSON do TheSportsDB (ou um mock compatível)
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Leagues lista todas as ligas de futebol conhecidas pelo provedor
func (c *Client) Leagues(ctx context.Context) ([]League, error) {
	var out leaguesResponse
	if err := c.get(ctx, "/all_leagues.php", &out); err != nil {
		return nil, err
	}
	return out.Leagues, nil
}

// Teams lista os times de uma liga pelo nome da liga
func (c *Client) Teams(ctx context.Context, leagueName string) ([]Team, error) {
	var out teamsResponse
	if err := c.get(ctx, "/search_all_teams.php?l="+url.QueryEscape(leagueName), &out); err != nil {
		return nil, err
	}
	if out.Teams == nil {
		return nil, fmt.Errorf("%w: teams of %q", ErrNotFound, leagueName)
	}
	return out.Teams, nil
}

// Events lista as partidas da temporada de uma liga
func (c *Client) Events(ctx context.Context, leagueID int) ([]Event, error) {
	var out eventsResponse
	if err := c.get(ctx, fmt.Sprintf("/eventsseason.php?id=%d", leagueID), &out); err != nil {
		return nil, err
	}
	if out.Events == nil {
		return nil, fmt.Errorf("%w: events of league %d", ErrNotFound, leagueID)
	}
	return out.Events, nil
}

// MatchDetail busca o estado corrente de uma partida (status, placar, minuto)
func (c *Client) MatchDetail(ctx context.Context, eventID int64) (*Event, error) {
	var out eventsResponse
	if err := c.get(ctx, fmt.Sprintf("/lookupevent.php?id=%d", eventID), &out); err != nil {
		return nil, err
	}
	if len(out.Events) == 0 {
		return nil, fmt.Errorf("%w: event %d", ErrNotFound, eventID)
	}
	return &out.Events[0], nil
}

// Table busca a tabela de classificação de uma liga na temporada
func (c *Client) Table(ctx context.Context, leagueID int, season string) ([]TableRow, error) {
	var out tableResponse
	if err := c.get(ctx, fmt.Sprintf("/lookuptable.php?l=%d&s=%s", leagueID, url.QueryEscape(season)), &out); err != nil {
		return nil, err
	}
	if out.Table == nil {
		return nil, fmt.Errorf("%w: table of league %d", ErrNotFound, leagueID)
	}
	return out.Table, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http %s on %s", ErrFetch, resp.Status, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrFetch, path, err)
	}
	return nil
}
