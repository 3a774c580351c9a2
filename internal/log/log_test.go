package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/scriptd/internal/log"
)

func TestCtxValues(t *testing.T) {
	tests := map[string]struct {
		ctx       func() context.Context
		expValues log.Kv
	}{
		"A context without values should return empty values.": {
			ctx:       func() context.Context { return context.Background() },
			expValues: log.Kv{},
		},

		"A context with values should return them.": {
			ctx: func() context.Context {
				return log.CtxWithValues(context.Background(), log.Kv{"a": 1, "b": "2"})
			},
			expValues: log.Kv{"a": 1, "b": "2"},
		},

		"Nested values should be merged and newer ones should override.": {
			ctx: func() context.Context {
				ctx := log.CtxWithValues(context.Background(), log.Kv{"a": 1, "b": "2"})
				return log.CtxWithValues(ctx, log.Kv{"b": "3", "c": true})
			},
			expValues: log.Kv{"a": 1, "b": "3", "c": true},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			gotValues := log.ValuesFromCtx(test.ctx())
			assert.Equal(test.expValues, gotValues)
		})
	}
}

func TestNoopSetValuesOnCtxKeepsParent(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, log.Noop.SetValuesOnCtx(ctx, log.Kv{"a": 1}))
}
