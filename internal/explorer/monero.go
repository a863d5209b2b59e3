package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// MoneroClient speaks the monero-wallet-rpc JSON-RPC dialect. Public chain
// nodes do not answer wallet methods, so balance calls only succeed against
// an endpoint backed by a wallet RPC for our view key.
type MoneroClient struct {
	baseURL    string
	httpClient *http.Client
	requestID  atomic.Uint64
}

// NewMoneroClient creates a client for one Monero RPC URL.
func NewMoneroClient(baseURL string) *MoneroClient {
	return &MoneroClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the configured RPC URL.
func (m *MoneroClient) BaseURL() string {
	return m.baseURL
}

// Balance returns the confirmed (unlocked) balance in atomic units for an
// account index.
func (m *MoneroClient) Balance(ctx context.Context, accountIndex uint32) (uint64, error) {
	var result struct {
		Balance         uint64 `json:"balance"`
		UnlockedBalance uint64 `json:"unlocked_balance"`
	}

	err := m.call(ctx, "get_balance", map[string]interface{}{
		"account_index": accountIndex,
	}, &result)
	if err != nil {
		return 0, err
	}

	return result.UnlockedBalance, nil
}

// Height returns the node's block height via the daemon get_info method.
func (m *MoneroClient) Height(ctx context.Context) (uint64, error) {
	var result struct {
		Height uint64 `json:"height"`
	}
	if err := m.call(ctx, "get_info", nil, &result); err != nil {
		return 0, err
	}
	return result.Height, nil
}

// call performs a JSON-RPC 2.0 request against /json_rpc.
func (m *MoneroClient) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      m.requestID.Add(1),
		"method":  method,
	}
	if params != nil {
		request["params"] = params
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/json_rpc", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if envelope.Error != nil {
		return fmt.Errorf("rpc error %d: %s", envelope.Error.Code, envelope.Error.Message)
	}
	if result != nil && envelope.Result != nil {
		return json.Unmarshal(envelope.Result, result)
	}

	return nil
}
