package domain

import "errors"

// ErrSlotUnavailable covers every capacity failure at commit time: the slot is
// at per-region capacity, the day is at the global cap, or another booking won
// the race for the exact instant. Callers only ever need to offer a new
// date/time, so the three cases collapse into one class.
var ErrSlotUnavailable = errors.New("horário indisponível")

// ErrInvalidInput marks a client-side validation failure (missing field,
// unparseable instant, unknown region).
var ErrInvalidInput = errors.New("entrada inválida")
