package cqe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transfer-service/pkg/errno"
)

func validReq() *CreateTransferReq {
	return &CreateTransferReq{
		Destination: "youtube",
		SourceRef:   "/recordings/episode-1.mp4",
		Title:       "Episode 1",
		Description: "First episode",
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validReq().Validate())
}

func TestValidateRequiredFields(t *testing.T) {
	req := validReq()
	req.SourceRef = ""
	assert.ErrorIs(t, req.Validate(), errno.ErrSourceRefRequired)

	req = validReq()
	req.Title = ""
	assert.ErrorIs(t, req.Validate(), errno.ErrTitleRequired)

	req = validReq()
	req.Description = ""
	assert.ErrorIs(t, req.Validate(), errno.ErrDescriptionRequired)
}

func TestValidateDestination(t *testing.T) {
	req := validReq()
	req.Destination = "vimeo"
	assert.ErrorIs(t, req.Validate(), errno.ErrDestinationInvalid)
}

func TestValidateSchedulingTime(t *testing.T) {
	req := validReq()
	req.SchedulingTime = "2026-09-01T10:00:00Z"
	require.NoError(t, req.Validate())

	meta := req.ToMetadata()
	require.NotNil(t, meta.SchedulingTime)
	assert.Equal(t, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), meta.SchedulingTime.UTC())
	assert.True(t, meta.Scheduled())
}

func TestValidateBadSchedulingTime(t *testing.T) {
	req := validReq()
	req.SchedulingTime = "next tuesday"
	assert.ErrorIs(t, req.Validate(), errno.ErrSchedulingInvalid)
}

func TestToMetadataUnscheduled(t *testing.T) {
	req := validReq()
	require.NoError(t, req.Validate())
	assert.False(t, req.ToMetadata().Scheduled())
}
