// Package nicepay is a client for the NicePay billing Web API
// (signed form requests, JSON responses).
package nicepay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/infrastructure/metrics"
	"github.com/pecal-inc/pecal/internal/shared/config"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

const (
	pathRegister = "/webapi/billing/billing_regist.jsp"
	pathApprove  = "/webapi/billing/billing_approve.jsp"
	pathRemove   = "/webapi/billing/billkey_remove.jsp"
	pathCancel   = "/webapi/cancel_process.jsp"

	codeRegisterOK = "F100"
	codeApproveOK  = "3001"
	codeRemoveOK   = "F101"
	codeCancelOK   = "2001"

	defaultTimeout = 30 * time.Second
	// Maximum response body size (64KB)
	maxResponseSize = 64 << 10
)

// Client talks to NicePay. It is safe for concurrent use.
type Client struct {
	mid         string
	merchantKey string
	baseURL     string
	httpClient  *http.Client
	metrics     *metrics.Metrics
	logger      logger.Interface
	now         func() time.Time
}

var _ gateway.BillingGateway = (*Client)(nil)

// NewClient creates a NicePay client. A nil httpClient gets one with the
// configured timeout.
func NewClient(cfg config.NicePayConfig, httpClient *http.Client, m *metrics.Metrics, log logger.Interface) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Client{
		mid:         cfg.MID,
		merchantKey: cfg.MerchantKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  httpClient,
		metrics:     m,
		logger:      log.Named("nicepay"),
		now:         time.Now,
	}
}

func (c *Client) EncryptCardData(card gateway.CardData) (string, error) {
	return encryptCardData(c.merchantKey, card)
}

func (c *Client) RegisterBillingKey(ctx context.Context, encData, orderID string) (*gateway.RegisterResult, error) {
	edi := ediDate(c.now())
	form := url.Values{
		"MID":      {c.mid},
		"EdiDate":  {edi},
		"Moid":     {orderID},
		"EncData":  {encData},
		"SignData": {signData(c.mid, edi, orderID, c.merchantKey)},
		"CharSet":  {"utf-8"},
		"EdiType":  {"JSON"},
	}

	res, err := c.post(ctx, gateway.OperationRegister, pathRegister, form, codeRegisterOK)
	if err != nil {
		return nil, err
	}

	return &gateway.RegisterResult{
		BID:        res.str("BID"),
		CardCode:   res.str("CardCode"),
		CardName:   res.str("CardName"),
		CardNo:     res.str("CardNo"),
		AuthDate:   res.str("AuthDate"),
		ResultCode: res.str("ResultCode"),
		ResultMsg:  res.str("ResultMsg"),
	}, nil
}

func (c *Client) ApproveBilling(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
	now := c.now()
	edi := ediDate(now)
	tid, err := newTID(c.mid, now)
	if err != nil {
		return nil, err
	}
	amt := strconv.FormatInt(req.Amount, 10)

	form := url.Values{
		"BID":          {req.BID},
		"MID":          {c.mid},
		"TID":          {tid},
		"EdiDate":      {edi},
		"Moid":         {req.OrderID},
		"Amt":          {amt},
		"GoodsName":    {req.GoodsName},
		"SignData":     {signData(c.mid, edi, req.OrderID, amt, req.BID, c.merchantKey)},
		"CardInterest": {"0"},
		"CardQuota":    {"00"},
		"CharSet":      {"utf-8"},
		"EdiType":      {"JSON"},
	}

	res, err := c.post(ctx, gateway.OperationApprove, pathApprove, form, codeApproveOK)
	if err != nil {
		if resErr, ok := err.(*gateway.ResultError); ok && resErr.TID == "" {
			resErr.TID = tid
		}
		return nil, err
	}

	approvedTID := res.str("TID")
	if approvedTID == "" {
		approvedTID = tid
	}
	amount := req.Amount
	if v, err := strconv.ParseInt(res.str("Amt"), 10, 64); err == nil && v > 0 {
		amount = v
	}

	return &gateway.ApproveResult{
		TID:        approvedTID,
		AuthCode:   res.str("AuthCode"),
		AuthDate:   res.str("AuthDate"),
		Amount:     amount,
		ResultCode: res.str("ResultCode"),
		ResultMsg:  res.str("ResultMsg"),
		Raw:        res,
	}, nil
}

func (c *Client) RemoveBillingKey(ctx context.Context, bid, orderID string) error {
	edi := ediDate(c.now())
	form := url.Values{
		"BID":      {bid},
		"MID":      {c.mid},
		"EdiDate":  {edi},
		"Moid":     {orderID},
		"SignData": {signData(c.mid, edi, orderID, bid, c.merchantKey)},
		"CharSet":  {"utf-8"},
		"EdiType":  {"JSON"},
	}

	_, err := c.post(ctx, gateway.OperationRemove, pathRemove, form, codeRemoveOK)
	return err
}

func (c *Client) CancelApproval(ctx context.Context, req gateway.CancelRequest) (*gateway.CancelResult, error) {
	edi := ediDate(c.now())
	amt := strconv.FormatInt(req.Amount, 10)
	form := url.Values{
		"TID":               {req.TID},
		"MID":               {c.mid},
		"Moid":              {req.OrderID},
		"CancelAmt":         {amt},
		"CancelMsg":         {req.Reason},
		"PartialCancelCode": {"0"},
		"EdiDate":           {edi},
		"SignData":          {signData(c.mid, amt, edi, c.merchantKey)},
		"CharSet":           {"utf-8"},
		"EdiType":           {"JSON"},
	}

	res, err := c.post(ctx, gateway.OperationCancel, pathCancel, form, codeCancelOK)
	if err != nil {
		return nil, err
	}

	return &gateway.CancelResult{
		TID:        req.TID,
		ResultCode: res.str("ResultCode"),
		ResultMsg:  res.str("ResultMsg"),
	}, nil
}

// response is a decoded gateway answer.
type response map[string]interface{}

func (r response) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// post sends a form and returns the decoded body when ResultCode equals
// successCode. Any other outcome is a *gateway.ResultError.
func (c *Client) post(ctx context.Context, operation, path string, form url.Values, successCode string) (response, error) {
	started := time.Now()

	res, err := c.do(ctx, path, form)
	if err != nil {
		c.metrics.ObserveGateway(operation, gateway.ResultCodeNetwork, started)
		c.logger.Errorw("nicepay request failed",
			"operation", operation,
			"moid", form.Get("Moid"),
			"error", err,
		)
		return nil, &gateway.ResultError{
			Operation:  operation,
			ResultCode: gateway.ResultCodeNetwork,
			Err:        err,
		}
	}

	code := res.str("ResultCode")
	c.metrics.ObserveGateway(operation, code, started)

	if code != successCode {
		c.logger.Warnw("nicepay rejected request",
			"operation", operation,
			"moid", form.Get("Moid"),
			"result_code", code,
			"result_msg", res.str("ResultMsg"),
			"request", maskForm(form),
		)
		return nil, &gateway.ResultError{
			Operation:  operation,
			ResultCode: code,
			ResultMsg:  res.str("ResultMsg"),
			TID:        res.str("TID"),
			Raw:        res,
		}
	}

	c.logger.Infow("nicepay request succeeded",
		"operation", operation,
		"moid", form.Get("Moid"),
		"result_code", code,
	)
	return res, nil
}

func (c *Client) do(ctx context.Context, path string, form url.Values) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	body, err = toUTF8(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var res response
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return res, nil
}

// toUTF8 converts an EUC-KR body, declared or detected, to UTF-8.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	ct := strings.ToLower(contentType)
	if !strings.Contains(ct, "euc-kr") && !strings.Contains(ct, "ks_c_5601") && utf8.Valid(body) {
		return body, nil
	}
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EUC-KR response: %w", err)
	}
	return decoded, nil
}
