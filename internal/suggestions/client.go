package suggestions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	trendingTimeout = 10 * time.Second
	predictTimeout  = 5 * time.Second
	healthTimeout   = 5 * time.Second
)

// ErrUnsuccessful は上流が success=false を返したことを表します。
var ErrUnsuccessful = errors.New("upstream returned unsuccessful response")

// Client はトレンド提案サービスの HTTP クライアントです。
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient は Client を作成します。httpClient が nil の場合は http.DefaultClient を使います。
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Health は上流サービスが healthy を返すか確認します。
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	var body struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &body); err != nil {
		return err
	}
	if body.Status != "healthy" {
		return fmt.Errorf("upstream status %q", body.Status)
	}
	return nil
}

// Trending は提案を count 件取得します。
func (c *Client) Trending(ctx context.Context, count int) ([]Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, trendingTimeout)
	defer cancel()

	var body TrendingResult
	path := "/trending-suggestions?count=" + url.QueryEscape(strconv.Itoa(count))
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, ErrUnsuccessful
	}
	return body.Suggestions, nil
}

// Predict はトレンド予測を取得します。
func (c *Client) Predict(ctx context.Context, req PredictRequest) (Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, predictTimeout)
	defer cancel()

	var body Prediction
	if err := c.do(ctx, http.MethodPost, "/predict-trend", req, &body); err != nil {
		return Prediction{}, err
	}
	if !body.Success {
		return Prediction{}, ErrUnsuccessful
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
