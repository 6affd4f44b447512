package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feastly/foodmarket-app/utils"
)

// CheckoutLineItem is one line of the hosted checkout, priced in minor
// currency units.
type CheckoutLineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutProvider creates hosted checkout sessions. The session covers the
// whole cart and is tagged with every order id it pays for, so the webhook can
// resolve all of them from one event.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, items []CheckoutLineItem, orderIDs []uint) (*CheckoutSession, error)
}

type StripeCheckoutService struct {
	secretKey  string
	successURL string
	cancelURL  string
	baseURL    string
	httpClient *http.Client
}

func NewStripeCheckoutService(secretKey, successURL, cancelURL string) *StripeCheckoutService {
	return &StripeCheckoutService{
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		baseURL:    "https://api.stripe.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// JoinOrderIDs encodes order ids as the comma-separated metadata value the
// webhook parses back.
func JoinOrderIDs(orderIDs []uint) string {
	parts := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func SplitOrderIDs(joined string) []uint {
	var ids []uint
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

func (s *StripeCheckoutService) CreateCheckoutSession(ctx context.Context, items []CheckoutLineItem, orderIDs []uint) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", s.successURL)
	form.Set("cancel_url", s.cancelURL)
	form.Set("metadata[orderIds]", JoinOrderIDs(orderIDs))
	form.Add("payment_method_types[]", "card")

	for i, item := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.FormatInt(item.Quantity, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, utils.ExternalServiceError("building checkout request", err)
	}
	req.SetBasicAuth(s.secretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, utils.ExternalServiceError("checkout session request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.ExternalServiceError("reading checkout response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, utils.ExternalServiceError(
			fmt.Sprintf("checkout provider returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, utils.ExternalServiceError("decoding checkout response", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, utils.ExternalServiceError("checkout response missing session id or url", nil)
	}
	return &session, nil
}

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// WebhookEvent is the provider event envelope delivered to the webhook.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// OrderIDs resolves the order ids tagged on the event's checkout session.
func (e *WebhookEvent) OrderIDs() []uint {
	return SplitOrderIDs(e.Data.Object.Metadata["orderIds"])
}

// WebhookVerifier checks the provider signature header before any payload is
// trusted. The header format is "t=<unix>,v1=<hex>", where v1 is
// HMAC-SHA256(secret, "<unix>.<raw body>").
type WebhookVerifier struct {
	Secret    string
	Tolerance time.Duration
	Now       func() time.Time
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{
		Secret:    secret,
		Tolerance: 5 * time.Minute,
		Now:       time.Now,
	}
}

func (v *WebhookVerifier) Sign(timestamp time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(v.Secret))
	fmt.Fprintf(mac, "%d.", timestamp.Unix())
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *WebhookVerifier) Verify(payload []byte, header string) error {
	var timestampPart, signaturePart string
	for _, pair := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestampPart = value
		case "v1":
			signaturePart = value
		}
	}
	if timestampPart == "" || signaturePart == "" {
		return utils.SignatureError("malformed signature header")
	}

	unix, err := strconv.ParseInt(timestampPart, 10, 64)
	if err != nil {
		return utils.SignatureError("malformed signature timestamp")
	}
	timestamp := time.Unix(unix, 0)

	now := v.Now()
	if timestamp.Before(now.Add(-v.Tolerance)) || timestamp.After(now.Add(v.Tolerance)) {
		return utils.SignatureError("signature timestamp outside tolerance")
	}

	expected := v.Sign(timestamp, payload)
	if !hmac.Equal([]byte(expected), []byte(signaturePart)) {
		return utils.SignatureError("signature mismatch")
	}
	return nil
}
