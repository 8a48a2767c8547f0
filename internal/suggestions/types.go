// Package suggestions はトレンド提案サービスへの問い合わせと、失敗時の固定データを提供します。
package suggestions

// DefaultCount は件数指定がない場合の提案件数です。
const DefaultCount = 10

// MaxCount は一度に要求できる最大件数です。
const MaxCount = 50

// Suggestion はトレンドに基づくコンテンツ提案です。
type Suggestion struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Hashtag         string  `json:"hashtag"`
	ContentType     string  `json:"content_type"`
	Platform        string  `json:"platform"`
	Region          string  `json:"region"`
	TrendingScore   float64 `json:"trending_score"`
	Description     string  `json:"description"`
	EngagementLevel string  `json:"engagement_level"`
}

// TrendingResult は GET /api/trending-suggestions の応答です。
type TrendingResult struct {
	Success     bool         `json:"success"`
	Suggestions []Suggestion `json:"suggestions"`
	Fallback    bool         `json:"fallback,omitempty"`
	Cached      bool         `json:"cached,omitempty"`
}

// PredictRequest はトレンド予測の入力です。
type PredictRequest struct {
	Hashtag     string `json:"hashtag"`
	ContentType string `json:"content_type"`
	Platform    string `json:"platform"`
	Region      string `json:"region"`
}

// withDefaults は未指定項目を既定値で埋めます。
func (r PredictRequest) withDefaults() PredictRequest {
	if r.Hashtag == "" {
		r.Hashtag = "#Viral"
	}
	if r.ContentType == "" {
		r.ContentType = "Video"
	}
	if r.Platform == "" {
		r.Platform = "TikTok"
	}
	if r.Region == "" {
		r.Region = "USA"
	}
	return r
}

// Prediction は POST /api/predict-trend の応答です。
type Prediction struct {
	Success         bool    `json:"success"`
	TrendingScore   float64 `json:"trending_score"`
	EngagementLevel string  `json:"engagement_level"`
	Recommendation  string  `json:"recommendation"`
	Fallback        bool    `json:"fallback,omitempty"`
}
