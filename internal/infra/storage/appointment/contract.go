package appointment

import (
	"context"
	"encoding/json"

	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/store"
)

// Store операции документного хранилища, нужные репозиторию
type Store interface {
	Put(ctx context.Context, collection, id string, value json.RawMessage) error
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	List(ctx context.Context, collection string) (store.Snapshot, error)
	Update(ctx context.Context, collection, id string, patch store.Patch) error
	Delete(ctx context.Context, collection, id string) error
	Subscribe(ctx context.Context, collection string, onChange func(store.Snapshot), onError func(error)) (func(), error)
}
