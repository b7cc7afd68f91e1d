package store

import "errors"

var (
	// ErrNotFound возвращается, когда документ не найден
	ErrNotFound = errors.New("store: document not found")

	// ErrInvalidPath возвращается при пустой коллекции или id
	ErrInvalidPath = errors.New("store: invalid collection path or id")

	// ErrInvalidDocument возвращается, когда значение не является JSON-объектом
	ErrInvalidDocument = errors.New("store: invalid document")

	// ErrConditionFailed возвращается UpdateIf, когда поле документа не совпало с ожидаемым
	ErrConditionFailed = errors.New("store: condition failed")

	// ErrClosed возвращается после закрытия хранилища
	ErrClosed = errors.New("store: closed")
)
