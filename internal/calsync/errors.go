package calsync

import (
	"errors"
	"fmt"
)

// Classificação de falhas do calendário externo.
//
// Transient: rede, 5xx, rate limit, timeout — vai para o ledger de retry.
// Revoked: credencial revogada/desconectada — exige reconexão manual,
// nunca retenta sozinho.
// Gone: o recurso já não existe no provedor (404/410) — para delete
// isso é sucesso.
type Kind int

const (
	KindTransient Kind = iota
	KindRevoked
	KindGone
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRevoked:
		return fmt.Sprintf("calendar credential revoked: %v", e.Err)
	case KindGone:
		return fmt.Sprintf("calendar event gone: %v", e.Err)
	}
	return fmt.Sprintf("calendar transient failure: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Transient(err error) error {
	return &Error{Kind: KindTransient, Err: err}
}

func Revoked(err error) error {
	return &Error{Kind: KindRevoked, Err: err}
}

func Gone(err error) error {
	return &Error{Kind: KindGone, Err: err}
}

// KindOf devolve a classificação de um erro. Erros desconhecidos contam
// como transitórios: o ledger de retry é o único caminho de recuperação.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindTransient
}

func IsRevoked(err error) bool {
	return err != nil && KindOf(err) == KindRevoked
}

func IsGone(err error) bool {
	return err != nil && KindOf(err) == KindGone
}
