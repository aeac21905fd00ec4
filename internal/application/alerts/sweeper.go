package alerts

import (
	"context"
	"time"

	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// Sweeper corre SweepExpiry en intervalos fijos hasta que el contexto se cancela.
// Los vencimientos son condición de tiempo, no de eventos, por eso no alcanza
// con evaluar tras cada mutación.
type Sweeper struct {
	evaluator *Evaluator
	interval  time.Duration
	log       *logger.Logger
}

// NewSweeper construye el barredor periódico.
func NewSweeper(evaluator *Evaluator, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{evaluator: evaluator, interval: interval, log: log}
}

// Start bloquea: corre un barrido inmediato y luego uno por tick. Pensado para
// lanzarse en una goroutine desde main.
func (s *Sweeper) Start(ctx context.Context) {
	s.run(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Sweeper) run(ctx context.Context) {
	if err := s.evaluator.SweepExpiry(ctx); err != nil && s.log != nil {
		s.log.Error().Err(err).Msg("barrido de vencimientos falló")
	}
}
