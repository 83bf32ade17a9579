package odds

import "math"

// Record é o retrospecto de um time em número de partidas
type Record struct {
	Wins   int
	Draws  int
	Losses int
}

// Prices são os três preços 1x2 de uma fixture
type Prices struct {
	HomeWin float64
	Draw    float64
	AwayWin float64
}

// scoreFloor evita preço zero/infinito quando um dos resultados nunca ocorreu,
// mantendo o mercado sempre cotável
const scoreFloor = 0.1

// Compute deriva os preços 1x2 a partir do retrospecto dos dois times.
// Pontuação de cada resultado: casa = vitórias da casa + derrotas do
// visitante; empate = empates de ambos; fora = derrotas da casa + vitórias
// do visitante. Preço = 1 / (pontuação / total), arredondado a 2 casas.
// Sem efeitos colaterais; os três preços retornados são finitos e > 0.
func Compute(home, away Record) Prices {
	total := float64(home.Wins + home.Draws + home.Losses +
		away.Wins + away.Draws + away.Losses)

	homeScore := float64(home.Wins + away.Losses)
	drawScore := float64(home.Draws + away.Draws)
	awayScore := float64(home.Losses + away.Wins)

	if homeScore == 0 {
		homeScore = scoreFloor
	}
	if drawScore == 0 {
		drawScore = scoreFloor
	}
	if awayScore == 0 {
		awayScore = scoreFloor
	}

	// Sem nenhuma partida no retrospecto não há divisão possível; as três
	// pontuações ficam no piso sobre a soma dos pisos, preço uniforme 3.00
	if total == 0 {
		total = 3 * scoreFloor
	}

	return Prices{
		HomeWin: round2(1 / (homeScore / total)),
		Draw:    round2(1 / (drawScore / total)),
		AwayWin: round2(1 / (awayScore / total)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
