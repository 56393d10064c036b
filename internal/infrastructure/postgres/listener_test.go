package postgres

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

func TestDecodeChange(t *testing.T) {
	c, err := decodeChange(`{"collection":"stock","key":"HB-GR"}`)
	require.NoError(t, err)
	assert.Equal(t, entity.Change{Collection: entity.CollectionStock, Key: "HB-GR"}, c)

	_, err = decodeChange(`{"collection":"stock"}`)
	assert.Error(t, err)
	_, err = decodeChange(`no-json`)
	assert.Error(t, err)
}

func TestListener_DispatchYCancelacion(t *testing.T) {
	l := NewListener(nil, zerolog.Nop())
	var got []entity.Change
	cancel, err := l.Subscribe(context.Background(), func(c entity.Change) { got = append(got, c) })
	require.NoError(t, err)

	l.dispatch(entity.Change{Collection: entity.CollectionVales, Key: "v1"})
	cancel()
	l.dispatch(entity.Change{Collection: entity.CollectionVales, Key: "v2"})

	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].Key)

	_, err = l.Subscribe(context.Background(), nil)
	assert.Error(t, err)
}
