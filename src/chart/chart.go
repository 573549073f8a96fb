// Package chart defines the tagged result payloads handed to the presentation
// layer. The Kind discriminant tells the renderer which shape it holds; the
// subsystem itself never inspects payloads after building them.
package chart

// Kind discriminates the payload variants.
type Kind string

const (
	KindEngagement     Kind = "engagement"
	KindMetricVsTime   Kind = "metric_vs_time"
	KindGeneratedImage Kind = "generated_image"
)

// Point is one sample of a metric-vs-time series.
type Point struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// EngagementItem is one bar of the engagement overview.
type EngagementItem struct {
	Label      string  `json:"label"`
	Engagement float64 `json:"engagement"`
	Views      float64 `json:"views,omitempty"`
	Favorites  float64 `json:"favorites,omitempty"`
}

// Payload is a tagged chart bundle. Exactly the fields matching Kind are set.
type Payload struct {
	Kind Kind `json:"kind"`

	// KindMetricVsTime
	Metric     string  `json:"metric,omitempty"`
	DateColumn string  `json:"date_column,omitempty"`
	Points     []Point `json:"points,omitempty"`

	// KindEngagement
	Items []EngagementItem `json:"items,omitempty"`

	// KindGeneratedImage
	MIME        string `json:"mime,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}
