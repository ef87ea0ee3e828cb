package ports

import "context"

// DataSink receives experiment data from the engine. The engine calls it once
// per accepted response with the key "<schedulerName>.response", and exporters
// may feed it snapshot fields in the shape "<schedulerName>.<field>".
//
// Implementations decide durability; the engine performs no I/O itself.
type DataSink interface {
	// AddData records one key/value pair.
	AddData(ctx context.Context, key string, value any) error
}

// Record is one collected key/value pair, in insertion order.
type Record struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// RecordingSink is a DataSink whose records can be read back, used by
// exporters and the session API.
type RecordingSink interface {
	DataSink

	// Records returns every recorded pair in insertion order.
	Records(ctx context.Context) ([]Record, error)
}

// DataSinkFunc adapts a function to the DataSink interface.
type DataSinkFunc func(ctx context.Context, key string, value any) error

// AddData implements DataSink.
func (f DataSinkFunc) AddData(ctx context.Context, key string, value any) error {
	return f(ctx, key, value)
}
