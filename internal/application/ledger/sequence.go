package ledger

import (
	"context"
	"fmt"
	"strings"
)

// Sequence contador leído al inicio de la transacción y escrito junto con el documento.
type Sequence struct {
	scope string
	date  string
	value int
}

// ReadSequence lee el contador de (scope, date) y reserva el siguiente número.
func ReadSequence(ctx context.Context, r Repos, scope, businessDate string) (*Sequence, error) {
	cur, err := r.Sequences.Current(ctx, scope, businessDate)
	if err != nil {
		return nil, err
	}
	return &Sequence{scope: scope, date: businessDate, value: cur + 1}, nil
}

// Value número reservado.
func (s *Sequence) Value() int { return s.value }

// Reference referencia legible PREFIJO-YYYYMMDD-NNN.
func (s *Sequence) Reference(prefix string) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, strings.ReplaceAll(s.date, "-", ""), s.value)
}

// Commit escribe el contador.
func (s *Sequence) Commit(ctx context.Context, r Repos) error {
	return r.Sequences.Set(ctx, s.scope, s.date, s.value)
}
