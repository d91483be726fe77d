// Package wiring builds the client-side dependency bundle shared by every CLI
// command, configured through persistent flags on the root command.
package wiring

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vermimetrics/vermi-platform/pkg/localstore"
	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

var (
	apiURL          string
	identityAPIKey  string
	identityBaseURL string
	statePath       string
)

// Register attaches the shared persistent flags to the root command.
func Register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&apiURL, "api-url", envOr("VERMI_API_URL", "http://localhost:3000"), "VermiMetrics API base URL")
	pf.StringVar(&identityAPIKey, "identity-api-key", os.Getenv("VERMI_IDENTITY_API_KEY"), "identity toolkit API key")
	pf.StringVar(&identityBaseURL, "identity-url", os.Getenv("VERMI_IDENTITY_URL"), "identity toolkit base URL override (e.g. local emulator)")
	pf.StringVar(&statePath, "state-file", envOr("VERMI_STATE_FILE", defaultStatePath()), "path to the persisted client state file")
}

// Wiring bundles the client-side dependencies commands build from the
// persistent flags.
type Wiring struct {
	Local    *localstore.Store
	API      *vermisdk.Client
	Identity *vermisdk.RESTIdentityProvider
}

// Wire builds the local store, API client, and identity provider.
func Wire() (*Wiring, error) {
	local, err := localstore.New(statePath)
	if err != nil {
		return nil, err
	}

	identity, err := vermisdk.NewRESTIdentityProvider(identityAPIKey, identityBaseURL)
	if err != nil {
		return nil, err
	}

	return &Wiring{
		Local:    local,
		API:      vermisdk.NewClient(apiURL),
		Identity: identity,
	}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vermi-state.json"
	}
	return filepath.Join(home, ".vermi", "state.json")
}
