package betslip

import (
	"errors"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrOutOfBounds         = errors.New("amount out of bounds")
	ErrInvalidScore        = errors.New("invalid predicted score")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSubmissionFailed    = errors.New("bet submission failed")
	ErrUnknownBetType      = errors.New("unknown bet type")

	ErrSubmitInFlight = errors.New("a submission is already in flight")
	ErrSlipLocked     = errors.New("slip is locked while submitting")
)

// ErrorKind classifica erros do slip para a camada HTTP e para métricas
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInvalidAmount
	KindOutOfBounds
	KindInvalidScore
	KindInsufficientBalance
	KindSubmissionFailed
	KindInvalidSelection
	KindBusy
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidAmount:
		return "invalid_amount"
	case KindOutOfBounds:
		return "out_of_bounds"
	case KindInvalidScore:
		return "invalid_score"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindSubmissionFailed:
		return "submission_failed"
	case KindInvalidSelection:
		return "invalid_selection"
	case KindBusy:
		return "busy"
	}
	return "unknown"
}

// ValidationError é sempre recuperável: o usuário corrige e reenvia
type ValidationError struct {
	Kind   ErrorKind
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case KindInvalidAmount:
		return ErrInvalidAmount
	case KindOutOfBounds:
		return ErrOutOfBounds
	case KindInvalidScore:
		return ErrInvalidScore
	case KindInsufficientBalance:
		return ErrInsufficientBalance
	case KindInvalidSelection:
		return ErrUnknownBetType
	}
	return nil
}

func invalid(kind ErrorKind, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Reason: reason}
}

// SubmissionError carrega a mensagem que vai para o usuário sem interpretação
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string { return e.Message }

func (e *SubmissionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSubmissionFailed}
	}
	return []error{ErrSubmissionFailed, e.Err}
}

// KindOf mapeia qualquer erro para um ErrorKind
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrOutOfBounds):
		return KindOutOfBounds
	case errors.Is(err, ErrInvalidScore):
		return KindInvalidScore
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	case errors.Is(err, ErrSubmissionFailed):
		return KindSubmissionFailed
	case errors.Is(err, ErrUnknownBetType):
		return KindInvalidSelection
	case errors.Is(err, ErrSubmitInFlight), errors.Is(err, ErrSlipLocked):
		return KindBusy
	}
	return KindUnknown
}
