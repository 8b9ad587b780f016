package viewhost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
	"github.com/armper/PandaGen-sub001/viewhost"
)

func TestPublishAcceptsStrictlyIncreasingRevisions(t *testing.T) {
	host := viewhost.NewHost()
	viewId := domain.NewViewId()

	assert.NoError(t, host.Publish(viewhost.Frame{ViewId: viewId, Kind: viewhost.StatusLine, Revision: 1}))
	assert.NoError(t, host.Publish(viewhost.Frame{ViewId: viewId, Kind: viewhost.StatusLine, Revision: 2}))

	latest, ok := host.Latest(viewId)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), latest.Revision)
}

func TestPublishRejectsNonMonotonicRevision(t *testing.T) {
	host := viewhost.NewHost()
	viewId := domain.NewViewId()

	assert.NoError(t, host.Publish(viewhost.Frame{ViewId: viewId, Kind: viewhost.Panel, Revision: 5}))

	err := host.Publish(viewhost.Frame{ViewId: viewId, Kind: viewhost.Panel, Revision: 5})
	assert.True(t, kernerr.Is(err, kernerr.RevisionNotMonotonic))

	err = host.Publish(viewhost.Frame{ViewId: viewId, Kind: viewhost.Panel, Revision: 4})
	assert.True(t, kernerr.Is(err, kernerr.RevisionNotMonotonic))
}

func TestPublishIndependentAcrossViews(t *testing.T) {
	host := viewhost.NewHost()
	a, b := domain.NewViewId(), domain.NewViewId()

	assert.NoError(t, host.Publish(viewhost.Frame{ViewId: a, Kind: viewhost.TextBuffer, Revision: 10}))
	assert.NoError(t, host.Publish(viewhost.Frame{ViewId: b, Kind: viewhost.TextBuffer, Revision: 1}))

	assert.Len(t, host.Snapshot(), 2)
}
