package suggestions

import (
	"context"
	"log"
)

// Upstream はトレンド提案サービスです。
type Upstream interface {
	Trending(ctx context.Context, count int) ([]Suggestion, error)
	Predict(ctx context.Context, req PredictRequest) (Prediction, error)
}

// Cache は提案一覧のキャッシュです。
type Cache interface {
	Get(ctx context.Context, count int) ([]Suggestion, bool, error)
	Set(ctx context.Context, count int, items []Suggestion) error
}

// Service は上流・キャッシュ・固定データを組み合わせて応答を返します。
// 上流の失敗は再試行せず、1回だけ記録して固定データを返します。
type Service struct {
	upstream Upstream
	cache    Cache
	logger   *log.Logger
}

// NewService は Service を作成します。cache は nil でも構いません。
func NewService(upstream Upstream, cache Cache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{upstream: upstream, cache: cache, logger: logger}
}

// NormalizeCount は件数を 1..MaxCount に収めます。
func NormalizeCount(count int) int {
	if count <= 0 {
		return DefaultCount
	}
	if count > MaxCount {
		return MaxCount
	}
	return count
}

// Trending は提案一覧を返します。
func (s *Service) Trending(ctx context.Context, count int) TrendingResult {
	count = NormalizeCount(count)

	if s.cache != nil {
		items, ok, err := s.cache.Get(ctx, count)
		if err != nil {
			s.logger.Printf("suggestions: cache read failed: %v", err)
		} else if ok {
			return TrendingResult{Success: true, Suggestions: items, Cached: true}
		}
	}

	items, err := s.fetch(ctx, count)
	if err != nil {
		s.logger.Printf("suggestions: upstream unavailable: %v", err)
		return TrendingResult{Success: false, Suggestions: FallbackSuggestions(count), Fallback: true}
	}
	return TrendingResult{Success: true, Suggestions: items}
}

// Predict はトレンド予測を返します。
func (s *Service) Predict(ctx context.Context, req PredictRequest) Prediction {
	req = req.withDefaults()
	pred, err := s.upstream.Predict(ctx, req)
	if err != nil {
		s.logger.Printf("suggestions: prediction unavailable: %v", err)
		return FallbackPrediction(req)
	}
	return pred
}

// Refresh は既定件数の提案を取得し直してキャッシュします。
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.fetch(ctx, DefaultCount)
	return err
}

func (s *Service) fetch(ctx context.Context, count int) ([]Suggestion, error) {
	items, err := s.upstream.Trending(ctx, count)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, count, items); err != nil {
			s.logger.Printf("suggestions: cache write failed: %v", err)
		}
	}
	return items, nil
}
