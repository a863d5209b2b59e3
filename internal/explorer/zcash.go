package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ZcashClient talks to public ZCash explorers. The public instances disagree
// on response shapes, so every parse tries the known dialects in order.
type ZcashClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewZcashClient creates a client for one ZCash explorer base URL.
func NewZcashClient(baseURL string) *ZcashClient {
	return &ZcashClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the configured explorer URL.
func (z *ZcashClient) BaseURL() string {
	return z.baseURL
}

// Balance returns the confirmed balance in zatoshis. Three response shapes
// are recognized: esplora chain_stats, a raw balance field, and a
// total-received/total-sent pair.
func (z *ZcashClient) Balance(ctx context.Context, address string) (uint64, error) {
	body, err := z.getRaw(ctx, "/address/"+address)
	if err != nil {
		return 0, err
	}

	// Shape 1: esplora chain_stats
	var chainStats struct {
		ChainStats *struct {
			FundedTxoSum uint64 `json:"funded_txo_sum"`
			SpentTxoSum  uint64 `json:"spent_txo_sum"`
		} `json:"chain_stats"`
	}
	if err := json.Unmarshal(body, &chainStats); err == nil && chainStats.ChainStats != nil {
		return chainStats.ChainStats.FundedTxoSum - chainStats.ChainStats.SpentTxoSum, nil
	}

	// Shape 2: raw balance field
	var rawBalance struct {
		Balance *json.Number `json:"balance"`
	}
	if err := json.Unmarshal(body, &rawBalance); err == nil && rawBalance.Balance != nil {
		return zatsFromNumber(*rawBalance.Balance)
	}

	// Shape 3: totals pair (camelCase and snake_case variants)
	var totals struct {
		TotalReceived      *json.Number `json:"totalReceived"`
		TotalSent          *json.Number `json:"totalSent"`
		TotalReceivedSnake *json.Number `json:"total_received"`
		TotalSentSnake     *json.Number `json:"total_sent"`
	}
	if err := json.Unmarshal(body, &totals); err == nil {
		received, sent := totals.TotalReceived, totals.TotalSent
		if received == nil {
			received, sent = totals.TotalReceivedSnake, totals.TotalSentSnake
		}
		if received != nil {
			in, err := zatsFromNumber(*received)
			if err != nil {
				return 0, err
			}
			var out uint64
			if sent != nil {
				out, err = zatsFromNumber(*sent)
				if err != nil {
					return 0, err
				}
			}
			if out > in {
				return 0, nil
			}
			return in - out, nil
		}
	}

	return 0, fmt.Errorf("unrecognized balance response from %s", z.baseURL)
}

// UTXOs returns unspent outputs for an address. Field names vary between
// explorer implementations, so both esplora and insight spellings parse.
func (z *ZcashClient) UTXOs(ctx context.Context, address string) ([]UTXO, error) {
	body, err := z.getRaw(ctx, "/address/"+address+"/utxo")
	if err != nil {
		return nil, err
	}

	var result []struct {
		TxID         string `json:"txid"`
		Vout         uint32 `json:"vout"`
		Value        uint64 `json:"value"`
		Satoshis     uint64 `json:"satoshis"`
		ScriptPubKey string `json:"scriptPubKey"`
		ScriptLower  string `json:"scriptpubkey"`
		Height       int64  `json:"height"`
		Status       *struct {
			Confirmed   bool  `json:"confirmed"`
			BlockHeight int64 `json:"block_height"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unrecognized utxo response from %s: %w", z.baseURL, err)
	}

	utxos := make([]UTXO, len(result))
	for i, u := range result {
		amount := u.Value
		if amount == 0 {
			amount = u.Satoshis
		}
		script := u.ScriptPubKey
		if script == "" {
			script = u.ScriptLower
		}

		utxo := UTXO{
			TxID:         u.TxID,
			Vout:         u.Vout,
			Amount:       amount,
			ScriptPubKey: script,
			BlockHeight:  u.Height,
		}
		if u.Status != nil {
			utxo.Confirmed = u.Status.Confirmed
			utxo.BlockHeight = u.Status.BlockHeight
		} else {
			utxo.Confirmed = u.Height > 0
		}
		utxos[i] = utxo
	}

	return utxos, nil
}

// Broadcast submits a raw transaction hex. The raw text/plain dialect is
// tried first; explorers that reject it get the JSON body form.
func (z *ZcashClient) Broadcast(ctx context.Context, rawTxHex string) (string, error) {
	txid, err := z.broadcastRaw(ctx, rawTxHex)
	if err == nil {
		return txid, nil
	}

	txid, jsonErr := z.broadcastJSON(ctx, rawTxHex)
	if jsonErr == nil {
		return txid, nil
	}

	return "", fmt.Errorf("%w: %v", ErrBroadcastFailed, err)
}

func (z *ZcashClient) broadcastRaw(ctx context.Context, rawTxHex string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", z.baseURL+"/tx", strings.NewReader(rawTxHex))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/plain")

	return z.doBroadcast(req)
}

func (z *ZcashClient) broadcastJSON(ctx context.Context, rawTxHex string) (string, error) {
	payload, err := json.Marshal(map[string]string{"rawtx": rawTxHex})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", z.baseURL+"/tx/send", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	return z.doBroadcast(req)
}

func (z *ZcashClient) doBroadcast(req *http.Request) (string, error) {
	resp, err := z.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	// Plain txid or a JSON envelope
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "{") {
		return strings.Trim(text, `"`), nil
	}

	var envelope struct {
		TxID   string `json:"txid"`
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("unrecognized broadcast response: %w", err)
	}
	if envelope.TxID != "" {
		return envelope.TxID, nil
	}
	if envelope.Result != "" {
		return envelope.Result, nil
	}
	return "", fmt.Errorf("broadcast response carried no txid")
}

func (z *ZcashClient) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", z.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := z.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrAddressNotFound
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// zatsFromNumber converts an explorer balance number to zatoshis. Integers
// are already zatoshis; fractional values are whole ZEC.
func zatsFromNumber(n json.Number) (uint64, error) {
	s := n.String()
	if !strings.Contains(s, ".") {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid balance %q: %w", s, err)
		}
		return v, nil
	}

	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid balance %q: %w", s, err)
	}
	if f < 0 {
		return 0, nil
	}
	return uint64(f*1e8 + 0.5), nil
}
