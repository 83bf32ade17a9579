package lifecycle

import (
	"context"
	"encoding/json"

	"github.com/mooneden/newbet/internal/provider/sportsdb"
)

// SportsDBSource adapta o cliente TheSportsDB ao contrato MatchSource
type SportsDBSource struct {
	Client *sportsdb.Client
}

func NewSportsDBSource(c *sportsdb.Client) *SportsDBSource {
	return &SportsDBSource{Client: c}
}

func (s *SportsDBSource) MatchState(ctx context.Context, apiFixtureID int64) (*MatchState, error) {
	ev, err := s.Client.MatchDetail(ctx, apiFixtureID)
	if err != nil {
		return nil, err
	}

	st := &MatchState{
		Status:   ev.StrStatus,
		Live:     sportsdb.IsLive(ev.StrStatus),
		Finished: sportsdb.IsFinished(ev.StrStatus),
	}
	if h, a, ok := ev.Score(); ok {
		st.GoalsHome, st.GoalsAway, st.HasScore = h, a, true
	}
	if m, ok := ev.Minute(); ok {
		st.Minute = &m
	}
	// snapshot do payload do provedor vira o log de eventos da fixture
	if raw, err := json.Marshal(ev); err == nil {
		st.Events = raw
	}
	return st, nil
}
