package libutil_test

import (
	"brdfgen/libutil"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	log := libutil.NewDefaultLogger(&out, &errOut, false, false)

	log.Debugf("hidden %d", 1)
	log.Infof("shown %d", 2)
	log.Warnf("careful %s", "now")
	log.Errorf("broken")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "INFO: shown 2")
	assert.Contains(t, errOut.String(), "WARN: careful now")
	assert.Contains(t, errOut.String(), "ERROR: broken")
	assert.NotContains(t, out.String(), "WARN")

	log.SetDebug(true)
	assert.True(t, log.DebugEnabled())
	log.Debugf("visible")
	assert.Contains(t, out.String(), "DEBUG: visible")
}

func TestDefaultLoggerQuiet(t *testing.T) {
	var out, errOut bytes.Buffer
	log := libutil.NewDefaultLogger(&out, &errOut, true, false)

	log.Infof("progress")
	log.Warnf("fallback")

	assert.Empty(t, out.String())
	assert.Equal(t, 1, strings.Count(errOut.String(), "\n"))
}

func TestNopLogger(t *testing.T) {
	var log libutil.Logger = libutil.NopLogger{}
	log.SetDebug(true)
	assert.False(t, log.DebugEnabled())
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 2, libutil.MinI(2, 5))
	assert.Equal(t, 5, libutil.MaxI(2, 5))
	assert.Equal(t, -1, libutil.MinI(-1, -1))
}
