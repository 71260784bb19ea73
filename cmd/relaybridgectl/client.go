package main

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAddr = "http://localhost:8080"

func doRequest(method, addr, path string) ([]byte, error) {
	if addr == "" {
		addr = defaultAddr
	}
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(method, addr+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s%s: %w", addr, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s%s: HTTP %d: %s", addr, path, resp.StatusCode, body)
	}
	return body, nil
}
