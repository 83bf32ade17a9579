package dto

import "time"

type PlaceBetResponse struct {
	BetID   string `json:"betId"`
	Status  string `json:"status"` // PENDING
	Message string `json:"message,omitempty"`
}

type BetResponse struct {
	BetID     string `json:"betId"`
	FixtureID int64  `json:"fixtureId"`
	BetType   int    `json:"betType"`
	Amount    string `json:"amount"`
	Course    string `json:"course"`
	Status    string `json:"status"`
	Bookmaker string `json:"bookmaker"`
}

type CompetitionResponse struct {
	ID              int64  `json:"id"`
	Caption         string `json:"caption"`
	League          string `json:"league"`
	Year            int    `json:"year"`
	CurrentMatchday int    `json:"currentMatchday"`
	Matchdays       int    `json:"matchdays"`
	Teams           int    `json:"teams"`
}

type FixtureResponse struct {
	ID            int64     `json:"id"`
	HomeTeamID    int64     `json:"homeTeamId"`
	AwayTeamID    int64     `json:"awayTeamId"`
	Matchday      int       `json:"matchday"`
	Date          time.Time `json:"date"`
	Status        string    `json:"status"`
	CourseHomeWin float64   `json:"courseHomeWin"`
	CourseDraw    float64   `json:"courseDraw"`
	CourseAwayWin float64   `json:"courseAwayWin"`
}

type StandingResponse struct {
	Rank     int    `json:"rank"`
	TeamID   int64  `json:"teamId"`
	Team     string `json:"team"`
	Matchday int    `json:"matchday"`
}

type UserResponse struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
	Cash     string `json:"cash"`
}
