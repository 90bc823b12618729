package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	jsonrpcVersion = "2.0"
)

type provider struct {
	url        string
	httpClient *retryablehttp.Client
	timeout    int
	debug      bool
}

type rpcRequest struct {
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Id      int64       `json:"id"`
	JsonRpc string      `json:"jsonrpc"`
}

type rpcResponse struct {
	Id     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e rpcError) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

func NewGateway(url string, timeout int, debug bool) (Gateway, error) {
	if len(url) == 0 {
		return nil, errors.New("bad call missing argument host")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 0

	return &provider{url, retryClient, timeout, debug}, nil
}

func (p *provider) Transfer(to string, amount uint64) error {
	rpcR := rpcRequest{"Transfer", []interface{}{to, amount}, time.Now().UnixNano(), jsonrpcVersion}
	payloadBuffer := &bytes.Buffer{}
	jsonEncoder := json.NewEncoder(payloadBuffer)
	if err := jsonEncoder.Encode(rpcR); err != nil {
		return err
	}

	zap.L().With(zap.String("to", to), zap.Uint64("amount", amount)).Debug("Payment: Transfer")

	req, err := retryablehttp.NewRequest("POST", p.url, payloadBuffer)
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/json;charset=utf-8")
	req.Header.Add("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Payment: RPC Failure")
		return err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if p.debug {
		zap.L().With(zap.String("response", string(data))).Debug("Payment: RPC Response")
	}

	var rr rpcResponse
	if err := json.Unmarshal(data, &rr); err != nil {
		return err
	}

	if rr.Error != nil {
		return *rr.Error
	}

	return nil
}
