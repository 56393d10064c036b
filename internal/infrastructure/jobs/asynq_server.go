package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// uniqueWindow evita encolar dos reconciliaciones pendientes a la vez.
const uniqueWindow = time.Minute

// Worker servidor asynq que procesa la cola de stock.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    zerolog.Logger
}

// WorkerConfig dependencias del worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Reconciler  Reconciler
	Concurrency int
	Logger      zerolog.Logger
}

// NewWorker construye el worker con el handler de reconciliación registrado.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Reconciler == nil {
		return nil, errors.New("worker: reconciler requerido")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskReconcile, NewReconcileHandler(cfg.Reconciler, cfg.Logger))
	return &Worker{server: srv, mux: mux, log: cfg.Logger}, nil
}

// Run procesa tareas hasta que ctx termine.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: no configurado")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client encola tareas.
type Client struct {
	client *asynq.Client
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueReconcile encola una reconciliación. Si ya hay una pendiente devuelve asynq.ErrDuplicateTask.
func (c *Client) EnqueueReconcile(ctx context.Context, payload ReconcilePayload) (*asynq.TaskInfo, error) {
	task, err := NewReconcileTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.Unique(uniqueWindow))
}

// Close libera el cliente.
func (c *Client) Close() error {
	return c.client.Close()
}
