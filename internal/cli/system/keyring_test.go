package system

import (
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/softworkday/internal/keyring"
)

const testAPIKey = "sk-ant-REDACTED"

func TestKeySetCmd(t *testing.T) {
	gokeyring.MockInit()
	defer func() { _ = keyring.DeleteAPIKey() }()

	ctx, out := setupTestContext(t)

	if err := (&KeySetCmd{Key: "  " + testAPIKey + "\n"}).Run(ctx); err != nil {
		t.Fatalf("KeySetCmd.Run() error = %v", err)
	}
	stored, err := keyring.GetAPIKey()
	if err != nil || stored != testAPIKey {
		t.Errorf("stored = %q, %v", stored, err)
	}
	if strings.Contains(out.String(), "Warning") {
		t.Errorf("unexpected warning: %s", out.String())
	}

	if err := (&KeySetCmd{Key: "   "}).Run(ctx); err == nil {
		t.Error("empty key should be rejected")
	}
}

func TestKeyShowAndDeleteCmd(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := setupTestContext(t)

	_ = keyring.DeleteAPIKey()
	if err := (&KeyShowCmd{}).Run(ctx); err == nil {
		t.Error("KeyShowCmd should fail when no key is stored")
	}
	if err := (&KeyDeleteCmd{}).Run(ctx); err == nil {
		t.Error("KeyDeleteCmd should fail when no key is stored")
	}

	if err := keyring.SetAPIKey(testAPIKey); err != nil {
		t.Fatal(err)
	}
	if err := (&KeyShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("KeyShowCmd error = %v", err)
	}
	if strings.Contains(out.String(), testAPIKey) || !strings.Contains(out.String(), "sk-ant-") {
		t.Errorf("key not masked: %s", out.String())
	}

	if err := (&KeyDeleteCmd{}).Run(ctx); err != nil {
		t.Fatalf("KeyDeleteCmd error = %v", err)
	}
	if _, err := keyring.GetAPIKey(); err != keyring.ErrNotFound {
		t.Errorf("key still present: %v", err)
	}
}

func TestKeyStatusCmd(t *testing.T) {
	gokeyring.MockInit()
	ctx, _ := setupTestContext(t)

	if err := (&KeyStatusCmd{}).Run(ctx); err != nil {
		t.Errorf("KeyStatusCmd.Run() error = %v, want nil", err)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{testAPIKey, "sk-ant-********mnop"},
		{"short", "*****"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := maskKey(tt.key); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
