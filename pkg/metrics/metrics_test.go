package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingWithoutApplication(t *testing.T) {
	ctx := WithNewRelic(context.Background(), nil)
	assert.Equal(t, context.Background(), ctx)

	assert.NotPanics(t, func() {
		RecordEvent(ctx, "EchoSubmitted", map[string]interface{}{"kind": "direct"})
		RecordCount(ctx, "echo.submitted", 1)
		RecordDuration(ctx, "echo.confirmation", time.Second)
	})
}

func TestTraceMethodCall_NoTransaction(t *testing.T) {
	tracer := TraceMethodCall(context.Background(), "echo", "Submit")
	assert.Nil(t, tracer)

	assert.NotPanics(t, func() {
		tracer.AddAttribute("signature", "abc")
		tracer.OnError(errors.New("failed"))
		tracer.End()
	})
}

func TestFlattenEntry(t *testing.T) {
	entry := logrus.NewEntry(logrus.New())
	entry.Message = "submitted"
	assert.Equal(t, "submitted", flattenEntry(entry))

	entry = entry.WithFields(logrus.Fields{
		"signature":     "abc",
		logrus.ErrorKey: errors.New("boom"),
	})
	entry.Message = "submitted"
	assert.Equal(t, `message="submitted", error="boom", data={"signature":"abc"}`, flattenEntry(entry))
}

func TestFormatter_WithoutApplication(t *testing.T) {
	f := NewCustomNewRelicLogFormatter(nil, &logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	entry := logrus.NewEntry(logrus.New()).WithField("type", "echo/driver")
	entry.Message = "hello"
	entry.Level = logrus.InfoLevel

	b, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "level=info msg=hello type=echo/driver\n", string(b))
}
