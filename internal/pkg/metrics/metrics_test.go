package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorGroupsAreSingletons(t *testing.T) {
	require.Same(t, Listener(), Listener())
	require.Same(t, Chain(), Chain())
	require.Same(t, Publisher(), Publisher())
	require.Same(t, App(), App())
}

func TestListenerCounters(t *testing.T) {
	m := Listener()
	before := testutil.ToFloat64(m.SkippedBlocksTotal)
	m.SkippedBlocksTotal.Add(4)
	require.Equal(t, before+4, testutil.ToFloat64(m.SkippedBlocksTotal))

	m.LastProcessedHeight.Set(105)
	require.Equal(t, float64(105), testutil.ToFloat64(m.LastProcessedHeight))
}
