package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/softworkday/internal/cli"
	"github.com/julianstephens/softworkday/internal/keyring"
)

// KeySetCmd stores the message generation API key in the OS keyring
type KeySetCmd struct {
	Key string `arg:"" help:"Anthropic API key to store in the keyring."`
}

func (cmd *KeySetCmd) Run(ctx *cli.Context) error {
	key := strings.TrimSpace(cmd.Key)
	if !strings.HasPrefix(key, "sk-") {
		ctx.Println("⚠️  Warning: key does not look like an Anthropic API key (expected an sk- prefix).")
	}
	if err := keyring.SetAPIKey(key); err != nil {
		return err
	}

	ctx.Println("✓ API key stored successfully in OS keyring")
	ctx.Println("  Messages will be generated with Claude from now on")
	return nil
}

// KeyShowCmd prints the stored API key, masked
type KeyShowCmd struct{}

func (cmd *KeyShowCmd) Run(ctx *cli.Context) error {
	key, err := keyring.GetAPIKey()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API key found in keyring. Use 'softworkday key set' to store one")
		}
		return fmt.Errorf("failed to retrieve API key from keyring: %w", err)
	}
	ctx.Println(maskKey(key))
	return nil
}

// KeyDeleteCmd removes the API key from the OS keyring
type KeyDeleteCmd struct{}

func (cmd *KeyDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteAPIKey(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API key found in keyring")
		}
		return err
	}
	ctx.Println("✓ API key deleted from OS keyring")
	return nil
}

// KeyStatusCmd checks the availability of the OS keyring
type KeyStatusCmd struct{}

func (cmd *KeyStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")

	if _, err := keyring.GetAPIKey(); err == nil {
		ctx.Println("✓ API key is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("ℹ No API key stored in keyring, messages come from the offline pool")
	}
	return nil
}

// maskKey keeps the key's prefix and last four characters.
func maskKey(key string) string {
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:7] + strings.Repeat("*", 8) + key[len(key)-4:]
}
