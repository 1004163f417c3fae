package analysis

// EmotionScores holds per-class speech emotion probabilities.
type EmotionScores struct {
	Calm  float64 `json:"calm"`
	Happy float64 `json:"happy"`
	Angry float64 `json:"angry"`
	Sad   float64 `json:"sad"`
}

// Fixed outputs standing in for models that are out of scope. The WPM
// placeholder also covers transcription backends that cannot serve.
const (
	placeholderWPM          = 142
	placeholderOverlapRatio = 0.07
	engagementScale         = 0.81
	pitchVarianceNorm       = 50.0
)

func placeholderEmotion() EmotionScores {
	return EmotionScores{Calm: 0.52, Happy: 0.28, Angry: 0.12, Sad: 0.08}
}

// engagementIndex weights the happy score with normalized pitch variance
// and clamps to [0, 1] before scaling.
func engagementIndex(pitchVariance float64, emotion EmotionScores) float64 {
	engagement := emotion.Happy + pitchVariance/pitchVarianceNorm
	if engagement < 0 {
		engagement = 0
	}
	if engagement > 1 {
		engagement = 1
	}
	return engagement * engagementScale
}

// CompareVoiceSimilarity scores two voice samples between 0 and 1, where
// 1 means identical voices. Speaker identity modeling is out of scope, so
// every pair scores as identical.
func CompareVoiceSimilarity(voicePath1, voicePath2 string) float64 {
	_ = voicePath1
	_ = voicePath2
	return 1.0
}
