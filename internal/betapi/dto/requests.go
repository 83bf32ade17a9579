package dto

type PlaceBetRequest struct {
	UserID    int64  `json:"userId"`
	FixtureID int64  `json:"fixtureId"`
	BetType   int    `json:"betType"`   // 0..6
	Amount    string `json:"amount"`    // decimal, ex: "10.00"
	Course    string `json:"course"`    // odd que o cliente viu
	Bookmaker string `json:"bookmaker"` // opcional; mercados estendidos
}
