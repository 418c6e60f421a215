package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// UserInfo es la identidad confirmada por el proveedor OAuth.
type UserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// Verifier valida un bearer token contra el endpoint userinfo del proveedor.
type Verifier interface {
	Verify(ctx context.Context, bearerToken string) (UserInfo, error)
}

var ErrTokenRejected = errors.New("oauth token rejected")

// GoogleVerifier consulta el endpoint userinfo de Google.
type GoogleVerifier struct {
	userinfoURL string
	client      *http.Client
}

func NewGoogleVerifier(userinfoURL string) *GoogleVerifier {
	if strings.TrimSpace(userinfoURL) == "" {
		userinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	}
	return &GoogleVerifier{
		userinfoURL: userinfoURL,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, bearerToken string) (UserInfo, error) {
	bearerToken = strings.TrimSpace(bearerToken)
	if bearerToken == "" {
		return UserInfo{}, ErrTokenRejected
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userinfoURL, nil)
	if err != nil {
		return UserInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := v.client.Do(req)
	if err != nil {
		return UserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return UserInfo{}, ErrTokenRejected
	}
	if resp.StatusCode != http.StatusOK {
		return UserInfo{}, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return UserInfo{}, err
	}
	info.Email = strings.ToLower(strings.TrimSpace(info.Email))
	return info, nil
}
