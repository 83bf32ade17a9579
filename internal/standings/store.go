package standings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Store guarda a classificação por rodada num hash Redis.
// Chave: "{competitionID}:{teamID}:standing", campo: rodada, valor: posição.
type Store struct {
	Client *redis.Client
}

func NewStore(c *redis.Client) *Store { return &Store{Client: c} }

func key(competitionID, teamID int64) string {
	return fmt.Sprintf("%d:%d:standing", competitionID, teamID)
}

// SetRank grava a posição do time na rodada apenas se ainda não existir
// (first-write-wins: uma posição registrada nunca é sobrescrita)
func (s *Store) SetRank(ctx context.Context, competitionID, teamID int64, matchday, rank int) error {
	return s.Client.HSetNX(ctx, key(competitionID, teamID), strconv.Itoa(matchday), rank).Err()
}

// Rank lê a posição do time numa rodada; ok=false quando nunca registrada
func (s *Store) Rank(ctx context.Context, competitionID, teamID int64, matchday int) (int, bool, error) {
	v, err := s.Client.HGet(ctx, key(competitionID, teamID), strconv.Itoa(matchday)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	rank, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, err
	}
	return rank, true, nil
}
