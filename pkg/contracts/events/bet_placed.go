package events

// Evento publicado no tópico "bet_placed" após aceitar uma aposta
type BetPlaced struct {
	BetID     string `json:"bet_id"`
	UserID    int64  `json:"user_id"`
	FixtureID int64  `json:"fixture_id"`
	BetType   int    `json:"bet_type"`
	Amount    string `json:"amount"` // decimal como string, ex: "10.00"
	Course    string `json:"course"` // odd congelada na aposta, ex: "1.85"
	TsUnixMs  int64  `json:"ts_unix_ms"`
}
