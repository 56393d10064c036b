package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// changesChannel canal NOTIFY usado por el trigger notify_ledger_change.
const changesChannel = "ledger_changes"

const reconnectDelay = time.Second

// Listener escucha ledger_changes en una conexión dedicada y reparte cada aviso a los suscriptores.
type Listener struct {
	pool *pgxpool.Pool
	log  zerolog.Logger

	mu       sync.Mutex
	watchers map[int]func(entity.Change)
	nextID   int
}

// NewListener construye el listener; Run debe ejecutarse en una goroutine.
func NewListener(pool *pgxpool.Pool, log zerolog.Logger) *Listener {
	return &Listener{pool: pool, log: log, watchers: map[int]func(entity.Change){}}
}

// Subscribe registra fn hasta que se invoque la función devuelta o termine ctx.
func (l *Listener) Subscribe(ctx context.Context, fn func(entity.Change)) (func(), error) {
	if fn == nil {
		return nil, errors.New("postgres: callback requerido")
	}
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.watchers[id] = fn
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.watchers, id)
			l.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return cancel, nil
}

// Run mantiene el LISTEN hasta que ctx termine, reconectando ante errores.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listenOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn().Err(err).Msg("listener de cambios desconectado, reintentando")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire conexión: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+changesChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		change, err := decodeChange(n.Payload)
		if err != nil {
			l.log.Warn().Err(err).Str("payload", n.Payload).Msg("aviso de cambio inválido")
			continue
		}
		l.dispatch(change)
	}
}

func (l *Listener) dispatch(c entity.Change) {
	l.mu.Lock()
	fns := make([]func(entity.Change), 0, len(l.watchers))
	for _, fn := range l.watchers {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

func decodeChange(payload string) (entity.Change, error) {
	var c entity.Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return c, fmt.Errorf("decode aviso: %w", err)
	}
	if c.Collection == "" || c.Key == "" {
		return c, errors.New("aviso sin colección o clave")
	}
	return c, nil
}
