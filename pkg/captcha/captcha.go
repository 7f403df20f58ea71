package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Verifier checks a client-supplied bot-check token against an external
// verification endpoint. Every failure mode (empty token, network error,
// timeout, non-2xx status, negative verdict) collapses to false so the
// caller only ever sees a single "not verified" outcome.
type Verifier struct {
	Secret    string
	VerifyURL string
	Timeout   time.Duration
	Client    *http.Client
	Logger    *logrus.Logger
}

func NewVerifier(secret, verifyURL string, timeout time.Duration, logger *logrus.Logger) *Verifier {
	return &Verifier{
		Secret:    secret,
		VerifyURL: verifyURL,
		Timeout:   timeout,
		Client:    &http.Client{},
		Logger:    logger,
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether the provider accepted the token. remoteIP is
// optional and forwarded when present.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) bool {
	if token == "" {
		return false
	}

	form := url.Values{}
	form.Set("secret", v.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	ctx, cancel := context.WithTimeout(ctx, v.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := v.Client.Do(req)
	if err != nil {
		if v.Logger != nil {
			v.Logger.WithError(err).Warn("captcha verification request failed")
		}
		return false
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		if v.Logger != nil {
			v.Logger.WithField("status", res.StatusCode).Warn("captcha verification rejected")
		}
		return false
	}

	var parsed verifyResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return false
	}
	if !parsed.Success && v.Logger != nil {
		v.Logger.WithField("error_codes", parsed.ErrorCodes).Debug("captcha negative verdict")
	}
	return parsed.Success
}
