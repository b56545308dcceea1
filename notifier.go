package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const resendBaseURL = "https://api.resend.com"

// ResendNotifier delivers verification emails through the Resend HTTP API.
type ResendNotifier struct {
	apiKey        string
	from          string
	verifyBaseURL string
	baseURL       string
	client        *http.Client
	logger        Logger
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func NewResendNotifier(apiKey, from, verifyBaseURL string) *ResendNotifier {
	return &ResendNotifier{
		apiKey:        apiKey,
		from:          from,
		verifyBaseURL: strings.TrimRight(verifyBaseURL, "/"),
		baseURL:       resendBaseURL,
		client:        &http.Client{Timeout: 5 * time.Second},
		logger:        defLogger{},
	}
}

func (n *ResendNotifier) WithLogger(logger Logger) *ResendNotifier {
	if logger != nil {
		n.logger = logger
	}
	return n
}

// WithBaseURL overrides the API endpoint, used by tests.
func (n *ResendNotifier) WithBaseURL(baseURL string) *ResendNotifier {
	if baseURL != "" {
		n.baseURL = strings.TrimRight(baseURL, "/")
	}
	return n
}

// SendVerification emails the account a link embedding its verification
// token.
func (n *ResendNotifier) SendVerification(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/users/verify/%s", n.verifyBaseURL, token)

	payload := resendEmailRequest{
		From:    n.from,
		To:      []string{email},
		Subject: "Confirmation of registration",
		HTML: fmt.Sprintf(
			`<p>Welcome! Please confirm your email by following <a href="%s">this link</a>.</p>`,
			link,
		),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build email request")
	}

	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "email delivery request failed")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		n.logger.Error("resend rejected email", "status", res.StatusCode, "body", string(msg))
		return errors.New(
			fmt.Sprintf("email delivery failed with status %d", res.StatusCode),
			errors.CategoryOperation,
		)
	}

	return nil
}

// LogNotifier writes the verification link to the log instead of sending
// email. It is the default so local setups work without an API key.
type LogNotifier struct {
	logger Logger
}

func NewLogNotifier(logger Logger) *LogNotifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerification(_ context.Context, email, token string) error {
	n.logger.Info("verification email", "to", email, "token", token)
	return nil
}

var (
	_ Notifier = (*ResendNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)
