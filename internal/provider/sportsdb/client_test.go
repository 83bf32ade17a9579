package sportsdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEvents(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/eventsseason.php": `{"events":[
			{"idEvent":"602129","strHomeTeam":"Arsenal","strAwayTeam":"Chelsea",
			 "dateEvent":"2024-08-17","strTime":"15:00:00","intRound":"1"},
			{"idEvent":"602130","strHomeTeam":"Everton","strAwayTeam":"Fulham",
			 "dateEvent":"2024-08-17","strTime":""}
		]}`,
	})

	c := NewClient(srv.URL)
	events, err := c.Events(context.Background(), 4328)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Arsenal", events[0].StrHomeTeam)
	assert.Equal(t, "Chelsea", events[0].StrAwayTeam)
	assert.Equal(t, int64(602129), events[0].ID())
	assert.Equal(t, 1, events[0].Round())
}

func TestMatchDetail(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/lookupevent.php": `{"events":[
			{"idEvent":"602129","strStatus":"2H","strProgress":"67",
			 "intHomeScore":"2","intAwayScore":"1"}
		]}`,
	})

	c := NewClient(srv.URL)
	ev, err := c.MatchDetail(context.Background(), 602129)
	require.NoError(t, err)

	home, away, ok := ev.Score()
	require.True(t, ok)
	assert.Equal(t, 2, home)
	assert.Equal(t, 1, away)

	min, ok := ev.Minute()
	require.True(t, ok)
	assert.Equal(t, 67, min)

	assert.True(t, IsLive(ev.StrStatus))
	assert.False(t, IsFinished(ev.StrStatus))
}

func TestMatchDetail_ScoreMissing(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/lookupevent.php": `{"events":[{"idEvent":"1","strStatus":"NS"}]}`,
	})

	c := NewClient(srv.URL)
	ev, err := c.MatchDetail(context.Background(), 1)
	require.NoError(t, err)

	_, _, ok := ev.Score()
	assert.False(t, ok)
}

func TestFetchFailure(t *testing.T) {
	srv := newTestServer(t, map[string]string{}) // tudo 404

	c := NewClient(srv.URL)
	_, err := c.Events(context.Background(), 4328)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestStatusTables(t *testing.T) {
	for _, s := range []string{"LIVE", "1H", "2H", "HT"} {
		assert.True(t, IsLive(s), s)
	}
	assert.False(t, IsLive("NS"))
	assert.False(t, IsLive("FT"))

	assert.True(t, IsFinished("FT"))
	assert.True(t, IsFinished("Match Finished"))
	assert.False(t, IsFinished("HT"))
}
