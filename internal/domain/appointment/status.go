package appointment

import "github.com/agendaflow/scheduling/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusBlocked   Status = "blocked"
	StatusNoShow    Status = "no_show"
)

// ActiveStatuses são os status que ocupam horário na agenda.
// Cancelled/Completed/NoShow liberam o slot.
var ActiveStatuses = []string{
	string(StatusPending),
	string(StatusScheduled),
	string(StatusBlocked),
}

func IsActive(s Status) bool {
	switch s {
	case StatusPending, StatusScheduled, StatusBlocked:
		return true
	}
	return false
}

// ===============================
// Validations
// ===============================

// CanConfirm: somente pending pode ser confirmado. Confirmar um
// agendamento já confirmado falha (determinístico, nunca duplo-confirma).
func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanCancel: pending, scheduled e blocked podem ser cancelados.
// Um agendamento concluído jamais.
func CanCancel(current Status) error {
	switch current {
	case StatusPending, StatusScheduled, StatusBlocked:
		return nil
	}
	return httperr.ErrBusiness("invalid_state")
}

// CanComplete: exige scheduled. Completar duas vezes falha alto
// em vez de cobrar duas vezes.
func CanComplete(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanReschedule(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// InitialStatus de um agendamento de cliente.
func InitialStatus() Status {
	return StatusPending
}
