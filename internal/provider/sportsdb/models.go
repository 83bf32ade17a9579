package sportsdb

import "strconv"

// Payloads do TheSportsDB. Campos numéricos chegam como string no JSON do
// provedor; os accessors fazem a conversão tolerante.

type League struct {
	IDLeague  string `json:"idLeague"`
	StrLeague string `json:"strLeague"`
	StrSport  string `json:"strSport"`
}

func (l League) ID() int { return atoi(l.IDLeague) }

type leaguesResponse struct {
	Leagues []League `json:"leagues"`
}

type Team struct {
	IDTeam       string `json:"idTeam"`
	StrTeam      string `json:"strTeam"`
	StrTeamShort string `json:"strTeamShort"`
	StrTeamBadge string `json:"strTeamBadge"`
}

type teamsResponse struct {
	Teams []Team `json:"teams"`
}

type Event struct {
	IDEvent      string `json:"idEvent"`
	StrHomeTeam  string `json:"strHomeTeam"`
	StrAwayTeam  string `json:"strAwayTeam"`
	DateEvent    string `json:"dateEvent"` // "2024-08-17"
	StrTime      string `json:"strTime"`   // "15:00:00", pode vir vazio
	IntRound     string `json:"intRound"`
	IntHomeScore string `json:"intHomeScore"`
	IntAwayScore string `json:"intAwayScore"`
	StrStatus    string `json:"strStatus"`   // "NS","1H","HT","2H","LIVE","FT"
	StrProgress  string `json:"strProgress"` // minuto corrente quando ao vivo
}

func (e Event) ID() int64 { return int64(atoi(e.IDEvent)) }

func (e Event) Round() int { return atoi(e.IntRound) }

func (e Event) Minute() (int, bool) { return atoiOK(e.StrProgress) }

// Score retorna o placar quando ambos os lados estão presentes no payload
func (e Event) Score() (home, away int, ok bool) {
	h, okH := atoiOK(e.IntHomeScore)
	a, okA := atoiOK(e.IntAwayScore)
	return h, a, okH && okA
}

type eventsResponse struct {
	Events []Event `json:"events"`
}

type TableRow struct {
	IDTeam  string `json:"idTeam"`
	StrTeam string `json:"strTeam"`
	IntRank string `json:"intRank"`
}

func (r TableRow) Rank() int { return atoi(r.IntRank) }

type tableResponse struct {
	Table []TableRow `json:"table"`
}

// Estados reportados pelo provedor que significam partida em andamento
var liveStatuses = map[string]bool{
	"LIVE": true,
	"1H":   true,
	"2H":   true,
	"HT":   true,
}

// IsLive informa se o status do provedor indica bola rolando
func IsLive(status string) bool { return liveStatuses[status] }

// IsFinished informa se o provedor deu a partida como encerrada
func IsFinished(status string) bool {
	return status == "FT" || status == "Match Finished"
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiOK(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
