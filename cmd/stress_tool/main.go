package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// 模拟多个用户同时下单同一个限量商品，验证库存不会超卖
// 服务端 server.rate_limit / rate_burst 需要调高，否则大部分请求被限流
var (
	baseURL     = flag.String("base", "http://localhost:8080", "API base URL")
	variantID   = flag.String("variant", "", "book variant id to order")
	productType = flag.String("type", "book", "product type: book or merch")
	totalUsers  = flag.Int("users", 200, "concurrent buyers")
	signupLimit = flag.Int("signup-concurrency", 20, "parallel signups")
)

var httpClient *http.Client

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	flag.Parse()
	if *variantID == "" {
		fmt.Fprintln(os.Stderr, "-variant is required")
		os.Exit(2)
	}
	ctx := context.Background()

	fmt.Printf("准备 %d 个测试账号...\n", *totalUsers)
	tokens, err := prepareUsers(ctx, *totalUsers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare users: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("开始压测：%d 个用户同时下单 variant %s\n", len(tokens), *variantID)
	var success, outOfStock, failed atomic.Int64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for _, token := range tokens {
		g.Go(func() error {
			code, err := placeOrder(gctx, token)
			switch {
			case err != nil:
				failed.Add(1)
			case code == 0:
				success.Add(1)
			case code == 31002:
				outOfStock.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	duration := time.Since(start)
	fmt.Println("--------------------------------------------------")
	fmt.Printf("耗时: %v\n", duration)
	fmt.Printf("总请求数: %d\n", len(tokens))
	fmt.Printf("QPS: %.2f\n", float64(len(tokens))/duration.Seconds())
	fmt.Printf("下单成功: %d (应等于开始时的库存)\n", success.Load())
	fmt.Printf("库存不足: %d\n", outOfStock.Load())
	fmt.Printf("其它失败: %d\n", failed.Load())
	fmt.Println("--------------------------------------------------")
}

// prepareUsers 注册并登录一批一次性账号
func prepareUsers(ctx context.Context, n int) ([]string, error) {
	tokens := make([]string, n)
	run := uuid.NewString()[:8]

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*signupLimit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			username := fmt.Sprintf("st%s%d", run, i)
			password := "stress-" + run
			signup := map[string]string{
				"name":     "Stress " + username,
				"username": username,
				"email":    username + "@stress.local",
				"password": password,
			}
			if _, err := post(gctx, "/auth/signup", "", signup); err != nil {
				return fmt.Errorf("signup %s: %w", username, err)
			}
			data, err := post(gctx, "/auth/login", "", map[string]string{"identifier": username, "password": password})
			if err != nil {
				return fmt.Errorf("login %s: %w", username, err)
			}
			var login struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(data, &login); err != nil {
				return err
			}
			tokens[i] = login.Token
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func placeOrder(ctx context.Context, token string) (int, error) {
	body := map[string]any{
		"items": []map[string]any{
			{"productType": *productType, "variantId": *variantID, "quantity": 1},
		},
		"shipping": map[string]string{
			"name":        "Stress Buyer",
			"email":       "buyer@stress.local",
			"addressLine": "1 Test Street",
			"city":        "Lagos",
			"country":     "Nigeria",
		},
	}
	resp, err := do(ctx, "/orders", token, body)
	if err != nil {
		return 0, err
	}
	return resp.Code, nil
}

func post(ctx context.Context, path, token string, payload any) (json.RawMessage, error) {
	resp, err := do(ctx, path, token, payload)
	if err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("code %d: %s", resp.Code, resp.Message)
	}
	return resp.Data, nil
}

func do(ctx context.Context, path, token string, payload any) (*envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}
	return &env, nil
}
