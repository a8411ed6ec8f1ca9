package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var httpClient *http.Client

func init() {
	// 优化 HTTP Client 配置
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

type client struct {
	baseURL string
	token   string
}

func (c *client) call(method, path string, body interface{}, dest interface{}) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, env.Message)
	}
	if dest != nil {
		return resp.StatusCode, json.Unmarshal(env.Data, dest)
	}
	return resp.StatusCode, nil
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	adminUser := flag.String("admin", "admin", "admin username")
	adminPass := flag.String("admin-password", os.Getenv("SHOP_ADMIN_PASSWORD"), "admin password")
	buyers := flag.Int("buyers", 200, "concurrent buyers")
	stock := flag.Int("stock", 5, "initial product stock")
	flag.Parse()

	admin := &client{baseURL: *baseURL}
	var auth struct {
		Token string `json:"token"`
	}
	if _, err := admin.call(http.MethodPost, "/users/login", map[string]string{"username": *adminUser, "password": *adminPass}, &auth); err != nil {
		fail("管理员登录失败", err)
	}
	admin.token = auth.Token

	// 1. 创建压测商品
	var product struct {
		ID uint `json:"id"`
	}
	if _, err := admin.call(http.MethodPost, "/admin/products", map[string]interface{}{
		"name":        fmt.Sprintf("Stress Item %d", time.Now().Unix()),
		"price":       9.99,
		"description": "stress test",
		"stock":       *stock,
	}, &product); err != nil {
		fail("创建商品失败", err)
	}

	// 2. 注册买家
	clients := make([]*client, 0, *buyers)
	suffix := time.Now().UnixNano() % 1000000
	for i := 0; i < *buyers; i++ {
		c := &client{baseURL: *baseURL}
		var a struct {
			Token string `json:"token"`
		}
		username := fmt.Sprintf("st%06d_%d", suffix, i)
		if _, err := c.call(http.MethodPost, "/users/register", map[string]string{"username": username, "password": "Stress#2024"}, &a); err != nil {
			fail("注册买家失败", err)
		}
		c.token = a.Token
		clients = append(clients, c)
	}

	fmt.Printf("开始压测：%d 个买家抢购库存 %d 的商品 (ProductID: %d)...\n", *buyers, *stock, product.ID)

	// 3. 并发下单
	var wg sync.WaitGroup
	var success, rejected, errored int64
	start := time.Now()

	for _, c := range clients {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			status, err := c.call(http.MethodPost, "/orders", map[string]interface{}{
				"items": []map[string]interface{}{{"id": product.ID, "quantity": 1}},
			}, nil)
			switch {
			case err == nil:
				atomic.AddInt64(&success, 1)
			case status == http.StatusBadRequest:
				atomic.AddInt64(&rejected, 1)
			default:
				atomic.AddInt64(&errored, 1)
			}
		}(c)
	}

	wg.Wait()
	duration := time.Since(start)

	var after struct {
		Stock int `json:"stock"`
	}
	if _, err := admin.call(http.MethodGet, fmt.Sprintf("/products/%d", product.ID), nil, &after); err != nil {
		fail("查询库存失败", err)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("QPS: %.2f\n", float64(*buyers)/duration.Seconds())
	fmt.Printf("下单成功: %d (预期: %d)\n", success, min(*buyers, *stock))
	fmt.Printf("库存不足: %d\n", rejected)
	fmt.Printf("其他错误: %d\n", errored)
	fmt.Printf("剩余库存: %d\n", after.Stock)
	fmt.Println("--------------------------------------------------")

	if after.Stock < 0 || int(success)+after.Stock != *stock {
		fmt.Println("库存不一致!")
		os.Exit(1)
	}
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
