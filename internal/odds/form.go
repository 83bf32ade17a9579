package odds

import "math/rand"

// FormSource fornece o retrospecto recente de um time, usado como entrada
// do cálculo de odds
type FormSource interface {
	TeamRecord(teamID int64) Record
}

// SimulatedForm gera retrospectos pseudo-aleatórios. O provedor gratuito não
// expõe estatísticas detalhadas por time, então o retrospecto é simulado em
// faixas fixas de vitórias/empates/derrotas.
type SimulatedForm struct {
	rng *rand.Rand
}

func NewSimulatedForm(seed int64) *SimulatedForm {
	return &SimulatedForm{rng: rand.New(rand.NewSource(seed))}
}

func (s *SimulatedForm) TeamRecord(_ int64) Record {
	return Record{
		Wins:   3 + s.rng.Intn(8), // [3,10]
		Draws:  2 + s.rng.Intn(7), // [2,8]
		Losses: 1 + s.rng.Intn(7), // [1,7]
	}
}
