package bot

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultQueueSize = 64

// EventHandler procesa un evento ya enrutado.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev Event)
}

// Dispatcher mantiene una cola por usuario activo: los eventos de un mismo usuario se
// procesan en orden de llegada y los de usuarios distintos en paralelo, hasta workers
// eventos a la vez. La cola de un usuario desaparece cuando queda vacia.
type Dispatcher struct {
	logger  *zap.Logger
	handler EventHandler
	intake  chan Event
	slots   chan struct{}

	mu      sync.Mutex
	pending map[int64][]Event
}

func NewDispatcher(logger *zap.Logger, handler EventHandler, workers, queueSize int) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		logger:  logger,
		handler: handler,
		intake:  make(chan Event, queueSize),
		slots:   make(chan struct{}, workers),
		pending: make(map[int64][]Event),
	}
}

// Submit encola el evento. Bloquea si la cola de entrada esta llena.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	select {
	case d.intake <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run reparte eventos hasta que ctx se cancela y luego espera a los que estan en curso.
func (d *Dispatcher) Run(ctx context.Context) error {
	var g errgroup.Group
	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		case ev := <-d.intake:
			if d.enqueue(ev) {
				g.Go(func() error {
					d.drain(ctx, ev.UserID)
					return nil
				})
			}
		}
	}
}

// enqueue agrega ev a la cola de su usuario. Devuelve true si la cola no existia
// y hace falta arrancar quien la atienda.
func (d *Dispatcher) enqueue(ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	queue, active := d.pending[ev.UserID]
	d.pending[ev.UserID] = append(queue, ev)
	return !active
}

// next saca el siguiente evento del usuario; con la cola vacia la elimina.
func (d *Dispatcher) next(userID int64) (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	queue := d.pending[userID]
	if len(queue) == 0 {
		delete(d.pending, userID)
		return Event{}, false
	}
	d.pending[userID] = queue[1:]
	return queue[0], true
}

func (d *Dispatcher) drain(ctx context.Context, userID int64) {
	for {
		ev, ok := d.next(userID)
		if !ok {
			return
		}
		select {
		case d.slots <- struct{}{}:
		case <-ctx.Done():
			d.logger.Debug("dispatch stopped with pending events", zap.Int64("telegram_id", userID))
			return
		}
		d.handler.HandleEvent(ctx, ev)
		<-d.slots
	}
}
