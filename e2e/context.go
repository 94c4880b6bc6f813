package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext holds the state of one scenario: the last response and the
// identities the scenario refers to by alias.
type TestContext struct {
	baseURL    string
	signingKey []byte
	issuer     string
	client     *http.Client

	identities   map[string]string
	lastStatus   int
	lastBody     []byte
	lastResponse map[string]any
	remembered   map[string]any
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewTestContext reads the target server from E2E_BASE_URL.
func NewTestContext() *TestContext {
	return &TestContext{
		baseURL:    strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/"),
		signingKey: []byte(envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")),
		issuer:     envOr("JWT_ISSUER", "renterverify"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state. Identities get a per-scenario suffix so
// scenarios never see each other's records.
func (tc *TestContext) Reset() {
	tc.identities = map[string]string{}
	tc.remembered = map[string]any{}
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastResponse = nil
}

// Identity resolves an alias like "alice" to a concrete identity.
func (tc *TestContext) Identity(alias string) string {
	if id, ok := tc.identities[alias]; ok {
		return id
	}
	id := fmt.Sprintf("ST%s%d", strings.ToUpper(alias), time.Now().UnixNano())
	tc.identities[alias] = id
	return id
}

// BindIdentity pins an alias to an existing identity such as the
// configured admin.
func (tc *TestContext) BindIdentity(alias, id string) {
	tc.identities[alias] = id
}

// TokenFor mints a caller token the server accepts for alias.
func (tc *TestContext) TokenFor(alias string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   tc.Identity(alias),
		Issuer:    tc.issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	})
	return token.SignedString(tc.signingKey)
}

func (tc *TestContext) Do(method, path string, body any, token string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastResponse = nil
	if len(tc.lastBody) > 0 {
		var decoded map[string]any
		if json.Unmarshal(tc.lastBody, &decoded) == nil {
			tc.lastResponse = decoded
		}
	}
	return nil
}

func (tc *TestContext) GET(path string) error {
	return tc.Do(http.MethodGet, path, nil, "")
}

func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) LastBody() string {
	return string(tc.lastBody)
}

// GetResponseField reads a dotted path such as "record.is_verified".
func (tc *TestContext) GetResponseField(field string) (any, error) {
	if tc.lastResponse == nil {
		return nil, fmt.Errorf("no JSON response (body %q)", tc.lastBody)
	}
	var cur any = tc.lastResponse
	for _, part := range strings.Split(field, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		if cur, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %q not in response %s", field, tc.lastBody)
		}
	}
	return cur, nil
}

func (tc *TestContext) Remember(key string, value any) {
	tc.remembered[key] = value
}

func (tc *TestContext) Recall(key string) (any, bool) {
	v, ok := tc.remembered[key]
	return v, ok
}
