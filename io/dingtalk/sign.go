package dingtalk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
)

// Sign computes the DingTalk robot signature for a millisecond timestamp:
// base64(HMAC-SHA256(secret, "<timestamp>\n<secret>")).
func Sign(secret string, timestampMillis int64) string {
	stringToSign := fmt.Sprintf("%d\n%s", timestampMillis, secret)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignURL appends the timestamp and signature query parameters to the
// webhook URL. The signature is timestamp-bound, so callers must recompute
// it for every delivery.
func SignURL(webhookURL, secret string, timestampMillis int64) string {
	sign := Sign(secret, timestampMillis)
	return fmt.Sprintf("%s&timestamp=%d&sign=%s", webhookURL, timestampMillis, url.QueryEscape(sign))
}
