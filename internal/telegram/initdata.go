// Package telegram validates Telegram WebApp init data, the signed identity
// blob the mini-app frontend forwards with every API call.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// User is the identity extracted from validated init data.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// ValidateInitData checks the WebApp HMAC signature and returns the embedded
// user. Scheme: secret = HMAC-SHA256(key "WebAppData", bot token);
// expected hash = HMAC-SHA256(secret, sorted "k=v" lines excluding hash).
func ValidateInitData(initData, botToken string) (*User, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("telegram: parse init data: %w", err)
	}
	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, fmt.Errorf("telegram: init data has no hash")
	}

	pairs := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		pairs = append(pairs, k+"="+values.Get(k))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	want := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(want), []byte(gotHash)) {
		return nil, fmt.Errorf("telegram: init data signature mismatch")
	}

	var u User
	if err := json.Unmarshal([]byte(values.Get("user")), &u); err != nil {
		return nil, fmt.Errorf("telegram: decode user payload: %w", err)
	}
	return &u, nil
}
