package suggestions

import "hash/fnv"

var fallbackSuggestions = []Suggestion{
	{ID: 1, Title: "#Challenge Video Content", Hashtag: "#Challenge", ContentType: "Video", Platform: "TikTok", Region: "USA", TrendingScore: 85.2, Description: "Create engaging video content featuring popular challenges", EngagementLevel: "High"},
	{ID: 2, Title: "#Dance Shorts Content", Hashtag: "#Dance", ContentType: "Shorts", Platform: "YouTube", Region: "USA", TrendingScore: 78.9, Description: "Showcase trending dance moves in short format", EngagementLevel: "High"},
	{ID: 3, Title: "#Education Post Content", Hashtag: "#Education", ContentType: "Post", Platform: "Instagram", Region: "USA", TrendingScore: 72.1, Description: "Share educational content that's currently popular", EngagementLevel: "Medium"},
	{ID: 4, Title: "#Gaming Live Stream Content", Hashtag: "#Gaming", ContentType: "Live Stream", Platform: "Twitch", Region: "USA", TrendingScore: 81.5, Description: "Create gaming-related live stream content", EngagementLevel: "High"},
	{ID: 5, Title: "#Comedy Reel Content", Hashtag: "#Comedy", ContentType: "Reel", Platform: "Instagram", Region: "USA", TrendingScore: 74.3, Description: "Develop humorous reel content for maximum engagement", EngagementLevel: "Medium"},
	{ID: 6, Title: "#Tech Video Content", Hashtag: "#Tech", ContentType: "Video", Platform: "YouTube", Region: "USA", TrendingScore: 69.7, Description: "Share technology insights through video content", EngagementLevel: "Medium"},
	{ID: 7, Title: "#Fashion Post Content", Hashtag: "#Fashion", ContentType: "Post", Platform: "Instagram", Region: "USA", TrendingScore: 76.8, Description: "Showcase fashion trends in post format", EngagementLevel: "High"},
	{ID: 8, Title: "#Fitness Shorts Content", Hashtag: "#Fitness", ContentType: "Shorts", Platform: "YouTube", Region: "USA", TrendingScore: 73.2, Description: "Create fitness-focused short content", EngagementLevel: "Medium"},
	{ID: 9, Title: "#Music Video Content", Hashtag: "#Music", ContentType: "Video", Platform: "TikTok", Region: "USA", TrendingScore: 82.1, Description: "Feature trending music in your video content", EngagementLevel: "High"},
	{ID: 10, Title: "#Travel Post Content", Hashtag: "#Travel", ContentType: "Post", Platform: "Instagram", Region: "USA", TrendingScore: 71.5, Description: "Share travel experiences and destinations", EngagementLevel: "Medium"},
}

var engagementLevels = []string{"Low", "Medium", "High"}

// FallbackSuggestions は固定の提案から先頭 count 件を返します。
func FallbackSuggestions(count int) []Suggestion {
	if count <= 0 || count > len(fallbackSuggestions) {
		count = len(fallbackSuggestions)
	}
	out := make([]Suggestion, count)
	copy(out, fallbackSuggestions[:count])
	return out
}

// FallbackPrediction はサービス停止時の予測を返します。
// スコアはハッシュタグから決まるため、同じ入力には同じ値を返します。
func FallbackPrediction(req PredictRequest) Prediction {
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.withDefaults().Hashtag))
	sum := h.Sum32()
	return Prediction{
		Success:         false,
		TrendingScore:   float64(sum % 100),
		EngagementLevel: engagementLevels[sum%uint32(len(engagementLevels))],
		Recommendation:  "Prediction unavailable",
		Fallback:        true,
	}
}
