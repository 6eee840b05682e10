package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIToken_Live(t *testing.T) {
	t.Parallel()

	token, err := GenerateAPIToken(EnvLive)
	if err != nil {
		t.Fatalf("GenerateAPIToken failed: %v", err)
	}

	// Check plaintext format
	if !strings.HasPrefix(token.Plaintext, "pk_live_") {
		t.Errorf("Token should start with pk_live_, got: %s", token.Plaintext)
	}

	// Check prefix length
	if len(token.Prefix) != TokenPrefixLen {
		t.Errorf("Prefix should be %d chars, got: %d", TokenPrefixLen, len(token.Prefix))
	}

	// Check hash is not empty and in PHC format
	if token.Hash == "" {
		t.Error("Hash should not be empty")
	}
	if !strings.HasPrefix(token.Hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", token.Hash)
	}

	// Verify plaintext contains prefix
	if !strings.Contains(token.Plaintext, token.Prefix) {
		t.Error("Plaintext should contain prefix")
	}
}

func TestGenerateAPIToken_Test(t *testing.T) {
	t.Parallel()

	token, err := GenerateAPIToken(EnvTest)
	if err != nil {
		t.Fatalf("GenerateAPIToken failed: %v", err)
	}

	if !strings.HasPrefix(token.Plaintext, "pk_test_") {
		t.Errorf("Token should start with pk_test_, got: %s", token.Plaintext)
	}
}

func TestGenerateAPIToken_DefaultsToLive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  string
	}{
		{"invalid env", "invalid"},
		{"empty env", ""},
		{"prod env", "prod"},
		{"staging env", "staging"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token, err := GenerateAPIToken(tt.env)
			if err != nil {
				t.Fatalf("GenerateAPIToken failed: %v", err)
			}
			if !strings.HasPrefix(token.Plaintext, "pk_live_") {
				t.Errorf("Expected pk_live_ prefix for env %q, got: %s", tt.env, token.Plaintext)
			}
		})
	}
}

func TestGenerateAPIToken_UniquePrefixes(t *testing.T) {
	t.Parallel()

	const numTokens = 100
	prefixes := make(map[string]bool, numTokens)

	for i := 0; i < numTokens; i++ {
		token, err := GenerateAPIToken(EnvLive)
		if err != nil {
			t.Fatalf("GenerateAPIToken failed: %v", err)
		}

		if prefixes[token.Prefix] {
			t.Errorf("Duplicate prefix found: %s (iteration %d)", token.Prefix, i)
		}
		prefixes[token.Prefix] = true
	}

	// Verify all prefixes are unique (high probability)
	if len(prefixes) != numTokens {
		t.Errorf("Expected %d unique prefixes, got %d", numTokens, len(prefixes))
	}
}

func TestGenerateAPIToken_UniqueSecrets(t *testing.T) {
	t.Parallel()

	const numTokens = 100
	secrets := make(map[string]bool, numTokens)

	for i := 0; i < numTokens; i++ {
		token, err := GenerateAPIToken(EnvLive)
		if err != nil {
			t.Fatalf("GenerateAPIToken failed: %v", err)
		}

		// Extract secret from plaintext (last 32 chars after final underscore)
		parts := strings.Split(token.Plaintext, "_")
		if len(parts) != 4 {
			t.Fatalf("Expected 4 parts in token, got %d", len(parts))
		}
		secret := parts[3]

		if secrets[secret] {
			t.Errorf("Duplicate secret found at iteration %d", i)
		}
		secrets[secret] = true
	}

	if len(secrets) != numTokens {
		t.Errorf("Expected %d unique secrets, got %d", numTokens, len(secrets))
	}
}

func TestParseAPIToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		wantEnv    string
		wantPrefix string
		wantErr    error
	}{
		{
			name:       "valid live token",
			token:      "pk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantEnv:    "live",
			wantPrefix: "abc123",
			wantErr:    nil,
		},
		{
			name:       "valid test token",
			token:      "pk_test_def456_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantEnv:    "test",
			wantPrefix: "def456",
			wantErr:    nil,
		},
		{
			name:    "wrong prefix sk_",
			token:   "sk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "wrong env prod",
			token:   "pk_prod_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "short prefix 3 chars",
			token:   "pk_live_abc_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "short secret 8 chars",
			token:   "pk_live_abc123_4f8d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "long secret 33 chars",
			token:   "pk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1bx",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "empty string",
			token:   "",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "just invalid",
			token:   "invalid",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "missing parts pk_abc",
			token:   "pk_abc",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "pk_live_ only",
			token:   "pk_live_",
			wantErr: ErrInvalidTokenFormat,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseAPIToken(tt.token)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("ParseAPIToken(%q) error = %v, want %v", tt.token, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseAPIToken(%q) unexpected error: %v", tt.token, err)
			}

			if parsed.Env != tt.wantEnv {
				t.Errorf("Env = %s, want %s", parsed.Env, tt.wantEnv)
			}

			if parsed.Prefix != tt.wantPrefix {
				t.Errorf("Prefix = %s, want %s", parsed.Prefix, tt.wantPrefix)
			}
		})
	}
}

func TestValidateTokenFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid live token", "pk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", true},
		{"valid test token", "pk_test_def456_0123456789abcdef0123456789abcdef", true},
		{"not a token", "not-a-token", false},
		{"wrong prefix", "sk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", false},
		{"empty", "", false},
		{"uppercase hex", "pk_live_ABC123_4F8D2E1B9C7A5F3D2E1B9C7A5F3D2E1B", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ValidateTokenFormat(tt.token)
			if got != tt.want {
				t.Errorf("ValidateTokenFormat(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
