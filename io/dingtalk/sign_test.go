package dingtalk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignIsDeterministicForFixedTimestamp(t *testing.T) {
	first := Sign("secret", 1714560000000)
	second := Sign("secret", 1714560000000)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestSignChangesWithTimestamp(t *testing.T) {
	first := Sign("secret", 1714560000000)
	second := Sign("secret", 1714560000001)

	assert.NotEqual(t, first, second)
}

func TestSignChangesWithSecret(t *testing.T) {
	first := Sign("secret-a", 1714560000000)
	second := Sign("secret-b", 1714560000000)

	assert.NotEqual(t, first, second)
}

func TestSignURLAppendsTimestampAndSignature(t *testing.T) {
	signed := SignURL("https://oapi.dingtalk.com/robot/send?access_token=x", "secret", 1714560000000)

	assert.True(t, strings.HasPrefix(signed, "https://oapi.dingtalk.com/robot/send?access_token=x&timestamp=1714560000000&sign="))
	// base64 output must be query-escaped
	assert.NotContains(t, signed[strings.Index(signed, "sign="):], "+")
}
