package common

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
	NA       = "N/A"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a snowflake int64 id
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		var err error
		snowflakeNode, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})
	return snowflakeNode.Generate().Int64()
}

// UUID returns a snowflake id in base36 string form
func UUID() string {
	snowflakeOnce.Do(func() {
		var err error
		snowflakeNode, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})
	return strings.ToLower(snowflakeNode.Generate().Base36())
}

// GetSecretSalt reads the instance salt from the environment, with a
// build-time default for development setups.
func GetSecretSalt() string {
	salt := os.Getenv("GLOWBOOK_SECRET_SALT")
	if salt == "" {
		salt = "5b5c1a0c-glowbook-salt"
	}
	return salt
}

// Sha256HashWithSalt returns hex(sha256(src + salt))
func Sha256HashWithSalt(src string, salt string) string {
	h := sha256.New()
	h.Write([]byte(src + salt))
	return hex.EncodeToString(h.Sum(nil))
}

// RandomHex returns n random bytes hex encoded (2n characters)
func RandomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// RoundCents rounds a currency amount to two decimal places
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// FmtAmount renders a currency amount for notification text
func FmtAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// InSlice reports whether v is one of list
func InSlice(v string, list []string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
