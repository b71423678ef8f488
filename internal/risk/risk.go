// Package risk maps a prediction's numeric score and label to the
// display bucket used everywhere a prediction is shown.
package risk

// Bucket is the High/Medium/Low classification of a prediction.
type Bucket string

const (
	BucketHigh   Bucket = "High"
	BucketMedium Bucket = "Medium"
	BucketLow    Bucket = "Low"
)

// Score thresholds for bucket boundaries. These drive color and band
// selection in any consumer, so they live in one place.
const (
	HighThreshold   = 0.70
	MediumThreshold = 0.40
)

// Classify buckets a prediction. The numeric threshold and the label
// are OR'd at each tier: a label of "High" forces the High bucket even
// with a low score, and a score above 0.70 forces High even with a
// label of "Low". Scores outside 0.0..1.0 are tolerated, not clamped.
func Classify(score float64, level string) Bucket {
	if score > HighThreshold || level == string(BucketHigh) {
		return BucketHigh
	}
	if score > MediumThreshold || level == string(BucketMedium) {
		return BucketMedium
	}
	return BucketLow
}
