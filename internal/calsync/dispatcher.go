package calsync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Job struct {
	Op             Operation
	AppointmentID  uuid.UUID
	ProfessionalID uint
	Reconcile      bool
}

// Dispatcher desacopla o espelhamento da requisição de booking: o caso
// de uso enfileira depois do commit e responde na hora; um worker único
// processa em background.
type Dispatcher struct {
	coordinator *Coordinator
	reconciler  *Reconciler
	log         *zap.Logger
	queue       chan Job
}

func NewDispatcher(coordinator *Coordinator, reconciler *Reconciler, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		coordinator: coordinator,
		reconciler:  reconciler,
		log:         log,
		queue:       make(chan Job, 256),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for job := range d.queue {
		ctx := context.Background()

		if job.Reconcile {
			if err := d.reconciler.Reconcile(ctx, job.ProfessionalID); err != nil {
				d.log.Warn("inbound reconcile failed",
					zap.Uint("professional_id", job.ProfessionalID),
					zap.Error(err),
				)
			}
			continue
		}

		if err := d.coordinator.Process(ctx, job.Op, job.AppointmentID); err != nil {
			// transitórios já estão no ledger; aqui é só visibilidade
			d.log.Warn("outward sync attempt failed",
				zap.String("operation", string(job.Op)),
				zap.String("appointment_id", job.AppointmentID.String()),
				zap.Error(err),
			)
		}
	}
}

// Dispatch nunca bloqueia o chamador. Com a fila cheia, a operação de
// espelhamento vai direto para o ledger de retry em vez de se perder.
func (d *Dispatcher) Dispatch(job Job) {
	select {
	case d.queue <- job:
		// enviado
	default:
		if job.Reconcile {
			d.log.Warn("sync queue full, dropping reconcile",
				zap.Uint("professional_id", job.ProfessionalID))
			return
		}

		if _, err := d.coordinator.retry.RecordFailure(
			context.Background(),
			job.AppointmentID,
			job.ProfessionalID,
			job.Op,
			"sync queue full",
			time.Now(),
		); err != nil {
			d.log.Error("sync queue full and ledger write failed",
				zap.String("appointment_id", job.AppointmentID.String()),
				zap.Error(err),
			)
		}
	}
}
