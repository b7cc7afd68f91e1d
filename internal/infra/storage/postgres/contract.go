package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// DB подключение с поддержкой транзакций (*sql.DB)
type DB interface {
	txmanager.DBExecutor
	txmanager.TxBeginner
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Listener источник уведомлений LISTEN/NOTIFY (*pq.Listener)
type Listener interface {
	Listen(channel string) error
	Unlisten(channel string) error
	Close() error
	NotificationChannel() <-chan *Notification
}

// Notification payload = путь коллекции; nil payload означает переподключение
type Notification struct {
	Channel string
	Payload string
}

// Metrics сбор длительности операций
type Metrics interface {
	ObserveStore(operation string, started time.Time, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

var _ DB = (*sql.DB)(nil)
