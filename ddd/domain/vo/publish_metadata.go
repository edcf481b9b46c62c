package vo

import "time"

// Destination 发布目的地
type Destination string

const (
	// DestinationYouTube API上传发布
	DestinationYouTube Destination = "youtube"
	// DestinationRedCircle 浏览器自动化发布
	DestinationRedCircle Destination = "redcircle"
)

// IsValid 检查目的地是否有效
func (d Destination) IsValid() bool {
	return d == DestinationYouTube || d == DestinationRedCircle
}

func (d Destination) String() string { return string(d) }

// PublishMetadata 发布元数据，两种发布适配器共用同一份。
type PublishMetadata struct {
	Title          string
	Description    string
	Tags           []string
	ThumbnailRef   string
	SchedulingTime *time.Time
	TranscriptURL  string

	// TransformNote carries an observability note from the precondition
	// transform (e.g. compression was skipped); surfaced in the result
	// message so a degraded run is never a silent success.
	TransformNote string
}

// Scheduled reports whether the artifact should be published at a future time
// instead of immediately.
func (m PublishMetadata) Scheduled() bool {
	return m.SchedulingTime != nil && !m.SchedulingTime.IsZero()
}
