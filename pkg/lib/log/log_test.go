package log_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/scriptd/pkg/lib/log"
)

func TestNewLogrus(t *testing.T) {
	tests := map[string]struct {
		debug     bool
		expDebug  bool
		expValues []string
	}{
		"Debug logs should be discarded by default.": {
			debug:     false,
			expDebug:  false,
			expValues: []string{"component=scriptd", "k=v"},
		},

		"Debug logs should be written when debug is enabled.": {
			debug:     true,
			expDebug:  true,
			expValues: []string{"component=scriptd", "k=v"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var out bytes.Buffer
			logger := log.NewLogrus(&out, test.debug).WithValues(log.Kv{"k": "v"})
			logger.Infof("info message")
			logger.Debugf("debug message")

			got := out.String()
			assert.Contains(got, "info message")
			assert.Equal(test.expDebug, bytes.Contains(out.Bytes(), []byte("debug message")))
			for _, v := range test.expValues {
				assert.Contains(got, v)
			}
		})
	}
}
