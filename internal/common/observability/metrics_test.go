package observability

import (
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordsJobMetrics(t *testing.T) {
	reg := promclient.NewRegistry()
	o := NewWithRegisterer("email-test", reg)
	t.Cleanup(o.Shutdown)

	ctx := context.Background()
	o.RecordJobProcessed(ctx, "success")
	o.RecordJobDuration(ctx, 25*time.Millisecond, "success")
	o.RecordRender(ctx, "welcome", "success")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["jobs_processed_total"])
	assert.True(t, names["email_renders_total"])
}

func TestObservability_StartSpan(t *testing.T) {
	o := NewWithRegisterer("email-test", promclient.NewRegistry())
	t.Cleanup(o.Shutdown)

	ctx, span := o.StartSpan(context.Background(), "render")
	require.NotNil(t, span)
	span.End()
	assert.NotNil(t, ctx)

	var zero *Observability
	_, noopSpan := zero.StartSpan(context.Background(), "render")
	assert.False(t, noopSpan.IsRecording())
}
