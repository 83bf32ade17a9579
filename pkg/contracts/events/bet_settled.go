package events

import "time"

// Evento emitido pelo fixture-worker após liquidar uma aposta.
type BetSettled struct {
	BetID     string    `json:"betId"`
	UserID    int64     `json:"userId"`
	FixtureID int64     `json:"fixtureId"`
	Outcome   string    `json:"outcome"` // "WON" | "LOST"
	Payout    string    `json:"payout,omitempty"`
	Ts        time.Time `json:"ts"`
}
