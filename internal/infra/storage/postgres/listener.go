package postgres

import (
	"time"

	"github.com/lib/pq"
)

// pqListener адаптирует *pq.Listener к Listener
type pqListener struct {
	l   *pq.Listener
	out chan *Notification
}

// NewPQListener открывает отдельное соединение для LISTEN с автопереподключением
func NewPQListener(dsn string, logger Logger) Listener {
	l := pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("postgres listener: event=%d error=%v", ev, err)
		}
	})

	pl := &pqListener{l: l, out: make(chan *Notification, 64)}
	go pl.forward()
	return pl
}

func (p *pqListener) forward() {
	defer close(p.out)
	for n := range p.l.Notify {
		if n == nil {
			// соединение восстановлено, уведомления могли потеряться
			p.out <- nil
			continue
		}
		p.out <- &Notification{Channel: n.Channel, Payload: n.Extra}
	}
}

func (p *pqListener) Listen(channel string) error   { return p.l.Listen(channel) }
func (p *pqListener) Unlisten(channel string) error { return p.l.Unlisten(channel) }
func (p *pqListener) Close() error                  { return p.l.Close() }

func (p *pqListener) NotificationChannel() <-chan *Notification { return p.out }
