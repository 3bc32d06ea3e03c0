package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultQueueSize is the number of messages an AsyncMailer buffers before
// Send starts dropping.
const DefaultQueueSize = 64

// sendTimeout bounds a single delivery attempt by a worker.
const sendTimeout = 30 * time.Second

// message is one queued delivery.
type message struct {
	to      string
	subject string
	body    string
}

// AsyncMailer decouples mail delivery from request handling. Send enqueues
// and returns immediately; a pool of workers drains the queue against the
// wrapped Mailer. When the queue is full the message is dropped and logged,
// matching the best-effort contract of notification mail.
type AsyncMailer struct {
	delegate Mailer
	queue    chan message
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	logger   *slog.Logger
}

// NewAsyncMailer starts workerCount workers draining into delegate.
// Callers must Stop the mailer on shutdown to flush queued messages.
func NewAsyncMailer(delegate Mailer, workerCount int, logger *slog.Logger) *AsyncMailer {
	if workerCount <= 0 {
		workerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &AsyncMailer{
		delegate: delegate,
		queue:    make(chan message, DefaultQueueSize),
		cancel:   cancel,
		logger:   logger.With(slog.String("component", "async_mailer")),
	}

	m.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go m.worker(ctx)
	}

	return m
}

// Send implements Mailer.Send. It never blocks and never returns a
// delivery error; failures surface in the worker's logs.
func (m *AsyncMailer) Send(ctx context.Context, to, subject, body string) error {
	select {
	case m.queue <- message{to: to, subject: subject, body: body}:
	default:
		m.logger.Warn("mail queue full, dropping message",
			slog.String("to", to),
			slog.String("subject", subject))
	}
	return nil
}

// Stop drains the queue and waits for the workers to finish.
func (m *AsyncMailer) Stop() {
	close(m.queue)
	m.wg.Wait()
	m.cancel()
}

func (m *AsyncMailer) worker(ctx context.Context) {
	defer m.wg.Done()

	for msg := range m.queue {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		if err := m.delegate.Send(sendCtx, msg.to, msg.subject, msg.body); err != nil {
			m.logger.Warn("mail delivery failed",
				slog.String("to", msg.to),
				slog.String("subject", msg.subject),
				slog.Any("error", err))
		}
		cancel()
	}
}

var _ Mailer = (*AsyncMailer)(nil)
