package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perceptlab/staircase/pkg/adapters/memory"
	"github.com/perceptlab/staircase/pkg/persistence/middleware"
	"github.com/perceptlab/staircase/pkg/ports"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestPIIMiddleware_MasksMatchingKeys(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSink()
	sink := middleware.NewPIIMiddleware([]string{`participant`, `\.notes$`})(store)

	require.NoError(t, sink.AddData(ctx, "participant.id", "P-0042"))
	require.NoError(t, sink.AddData(ctx, "stairs.notes", "free text"))
	require.NoError(t, sink.AddData(ctx, "stairs.response", 1))

	records, err := store.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, middleware.MaskedValue, records[0].Value)
	assert.Equal(t, middleware.MaskedValue, records[1].Value)
	assert.Equal(t, 1, records[2].Value)
}

func TestEncryptionMiddleware_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSink()
	sink := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey})(store)

	require.NoError(t, sink.AddData(ctx, "stairs.response", 1))
	require.NoError(t, sink.AddData(ctx, "stairs.label", "low"))

	// At rest only ciphertext is stored.
	raw, err := store.Records(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, 1, raw[0].Value)
	assert.IsType(t, "", raw[0].Value)

	// Reading through the middleware decrypts.
	records, err := sink.(ports.RecordingSink).Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, float64(1), records[0].Value) // numbers round-trip via JSON
	assert.Equal(t, "low", records[1].Value)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSink()
	oldKey := []byte("ffffffffffffffffffffffffffffffff")

	oldSink := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(store)
	require.NoError(t, oldSink.AddData(ctx, "k", "written-with-old-key"))

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    testKey,
		FallbackKeys: [][]byte{oldKey},
	})(store)
	require.NoError(t, rotated.AddData(ctx, "k", "written-with-new-key"))

	records, err := rotated.(ports.RecordingSink).Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "written-with-old-key", records[0].Value)
	assert.Equal(t, "written-with-new-key", records[1].Value)
}

func TestEncryptionMiddleware_WrongKeyFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSink()

	writer := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey})(store)
	require.NoError(t, writer.AddData(ctx, "k", "secret"))

	reader := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: []byte("eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"),
	})(store)
	_, err := reader.(ports.RecordingSink).Records(ctx)
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsShortKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}

func TestChain_OrderOfApplication(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSink()
	sink := middleware.Chain(store,
		middleware.NewPIIMiddleware([]string{`participant`}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey}),
	)

	require.NoError(t, sink.AddData(ctx, "participant.id", "P-0042"))

	// Masking ran before encryption, so decrypting yields the mask, and the
	// raw store never saw the identifier.
	records, err := sink.(ports.RecordingSink).Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, middleware.MaskedValue, records[0].Value)

	raw, _ := store.Records(ctx)
	assert.NotContains(t, raw[0].Value, "P-0042")
}

func TestEncryptionMiddleware_NonRecordingSinkFails(t *testing.T) {
	writeOnly := ports.DataSinkFunc(func(context.Context, string, any) error { return nil })
	sink := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey})(writeOnly)

	_, err := sink.(ports.RecordingSink).Records(context.Background())
	assert.Error(t, err)
}
