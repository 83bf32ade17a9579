package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FixtureStatus é o único enum de status de partida do sistema.
// Os códigos numéricos são os persistidos no banco.
type FixtureStatus int

const (
	StatusScheduled FixtureStatus = 1
	StatusFinished  FixtureStatus = 2
	StatusLive      FixtureStatus = 3
)

func (s FixtureStatus) String() string {
	switch s {
	case StatusScheduled:
		return "SCHEDULED"
	case StatusFinished:
		return "FINISHED"
	case StatusLive:
		return "LIVE"
	}
	return "UNKNOWN"
}

// FixtureResult codifica o resultado final de uma partida
type FixtureResult int

const (
	ResultUnset   FixtureResult = -1
	ResultDraw    FixtureResult = 0
	ResultHomeWin FixtureResult = 1
	ResultAwayWin FixtureResult = 2
)

// ResultFromScore deriva o código de resultado a partir do placar final
func ResultFromScore(goalsHome, goalsAway int) FixtureResult {
	switch {
	case goalsHome > goalsAway:
		return ResultHomeWin
	case goalsHome == goalsAway:
		return ResultDraw
	default:
		return ResultAwayWin
	}
}

// BetType identifica o mercado apostado
type BetType int

const (
	BetDraw         BetType = 0 // empate
	BetHomeWin      BetType = 1
	BetAwayWin      BetType = 2
	BetOver25       BetType = 3 // mais de 2.5 gols
	BetUnder25      BetType = 4 // menos de 2.5 gols
	BetBothScore    BetType = 5 // ambas marcam
	BetDoubleChance BetType = 6 // dupla chance 1X (casa ou empate)
)

// Valid informa se o código de mercado é conhecido
func (b BetType) Valid() bool { return b >= BetDraw && b <= BetDoubleChance }

// BetOutcome é o estado de liquidação de uma aposta
type BetOutcome int

const (
	BetLost    BetOutcome = 0
	BetWon     BetOutcome = 1
	BetPending BetOutcome = 2
)

func (o BetOutcome) String() string {
	switch o {
	case BetLost:
		return "LOST"
	case BetWon:
		return "WON"
	case BetPending:
		return "PENDING"
	}
	return "UNKNOWN"
}

// Competition é uma liga/temporada sincronizada do provedor
type Competition struct {
	ID                 int64
	APIID              int
	Caption            string
	League             string
	Year               int
	NumberOfMatchdays  int
	NumberOfTeams      int
	CurrentMatchday    int
}

// Team pertence a exatamente uma Competition; chave natural (Name, CompetitionID)
type Team struct {
	ID            int64
	Name          string
	CrestURL      string
	ShortName     string
	Code          string
	CompetitionID int64
}

// Fixture é uma partida agendada entre dois times da mesma competição
type Fixture struct {
	ID            int64
	HomeTeamID    int64
	AwayTeamID    int64
	CompetitionID int64
	Matchday      int
	Date          time.Time
	Status        FixtureStatus
	GoalsHome     *int
	GoalsAway     *int
	CourseHomeWin float64
	CourseDraw    float64
	CourseAwayWin float64
	Result        FixtureResult
	APIFixtureID  *int64 // ausente em partidas criadas manualmente
	Minute        *int
	Events        json.RawMessage
	LastOddsUpdate *time.Time
}

// CourseFor retorna o preço atual da fixture para um mercado 1x2.
// Mercados estendidos não têm preço próprio na fixture.
func (f *Fixture) CourseFor(b BetType) (float64, bool) {
	switch b {
	case BetHomeWin:
		return f.CourseHomeWin, true
	case BetDraw:
		return f.CourseDraw, true
	case BetAwayWin:
		return f.CourseAwayWin, true
	}
	return 0, false
}

// AppUser é a conta do apostador; Cash só é mutado pelo débito de aposta
// e pelo crédito da liquidação
type AppUser struct {
	ID                int64
	UserName          string
	Cash              decimal.Decimal
	BankAccountNumber string
}

// Bet referencia exatamente uma fixture; Course é congelada na criação
type Bet struct {
	ID        string // uuid
	UserID    int64
	FixtureID int64
	BetType   BetType
	Amount    decimal.Decimal
	Course    decimal.Decimal
	Result    BetOutcome
	Bookmaker string
	PlacedAt  time.Time
}

// Payout é o valor creditado caso a aposta vença (stake * odd, decimal exato)
func (b *Bet) Payout() decimal.Decimal {
	return b.Amount.Mul(b.Course)
}
