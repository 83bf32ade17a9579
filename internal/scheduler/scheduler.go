package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job é uma tarefa periódica sem estado entre invocações: cada tick é uma
// passada completa sobre o conteúdo atual do banco
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// Scheduler executa jobs independentes em cadências próprias. Ticks do mesmo
// job nunca se sobrepõem (o loop só arma o próximo tick após a passada
// terminar); jobs diferentes rodam concorrentes entre si. Pânico ou erro de
// um job fica isolado nele e não suspende os demais.
type Scheduler struct {
	log  *zap.Logger
	jobs []Job

	OnRun   func(job string)
	OnError func(job string)
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{log: log}
}

func (s *Scheduler) Register(j Job) {
	s.jobs = append(s.jobs, j)
}

// Start dispara uma goroutine por job e bloqueia até o contexto encerrar.
// Cada job roda imediatamente na partida e depois a cada intervalo.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, j := range s.jobs {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			s.runLoop(ctx, j)
		}(j)
	}
	wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, j Job) {
	s.log.Info("job started", zap.String("job", j.Name), zap.Duration("every", j.Every))

	ticker := time.NewTicker(j.Every)
	defer ticker.Stop()

	s.runOnce(ctx, j)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("job stopped", zap.String("job", j.Name))
			return
		case <-ticker.C:
			s.runOnce(ctx, j)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j Job) {
	if ctx.Err() != nil {
		return
	}
	if s.OnRun != nil {
		s.OnRun(j.Name)
	}

	if err := s.safeRun(ctx, j); err != nil {
		if ctx.Err() != nil {
			return // shutdown abandonou o tick em andamento; retomada é segura
		}
		s.log.Error("job tick failed", zap.String("job", j.Name), zap.Error(err))
		if s.OnError != nil {
			s.OnError(j.Name)
		}
	}
}

// safeRun isola pânico do job num erro comum do tick
func (s *Scheduler) safeRun(ctx context.Context, j Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job %s: %v", j.Name, r)
		}
	}()
	return j.Run(ctx)
}
