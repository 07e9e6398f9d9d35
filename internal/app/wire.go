package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"cipherpost/internal/domain"
	"cipherpost/internal/omemo"
	"cipherpost/internal/relay"
	"cipherpost/internal/services/identity"
	"cipherpost/internal/services/message"
	"cipherpost/internal/services/prekey"
	"cipherpost/internal/services/send"
	"cipherpost/internal/services/trust"
	"cipherpost/internal/session"
	"cipherpost/internal/store"
)

// App bundles everything that can be constructed before the identity is
// unlocked: file stores, the relay client, and the key-management services.
type App struct {
	Config  Config
	DataDir string
	Log     *slog.Logger

	Identities domain.IdentityService
	PreKeys    domain.PreKeyService
	Relay      domain.RelayClient

	prekeyStore  domain.PreKeyStore
	sessionStore domain.SessionStore
	ratchetStore domain.RatchetStore
	trustStore   domain.TrustStore
}

// New wires the stores and services rooted at dataDir.
func New(dataDir string, cfg Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}

	ids := store.NewIdentityFileStore(dataDir)
	prekeys := store.NewPreKeyFileStore(dataDir)
	bundles := store.NewBundleFileStore(dataDir)
	sessions := store.NewSessionFileStore(dataDir)
	ratchets := store.NewRatchetFileStore(dataDir)
	trustStore := store.NewTrustFileStore(dataDir)

	return &App{
		Config:       cfg,
		DataDir:      dataDir,
		Log:          log,
		Identities:   identity.New(ids),
		PreKeys:      prekey.New(ids, prekeys, bundles),
		Relay:        relay.NewHTTP(cfg.RelayURL, http.DefaultClient),
		prekeyStore:  prekeys,
		sessionStore: sessions,
		ratchetStore: ratchets,
		trustStore:   trustStore,
	}
}

// TrustStore exposes the trust store for the trust command.
func (a *App) TrustStore() domain.TrustStore { return a.trustStore }

// Runtime is the unlocked half of the application: the encryption provider
// and the services built on it.
type Runtime struct {
	Identity domain.Identity
	Provider *omemo.Provider
	Messages domain.MessageService
	Workflow *send.Workflow
}

// Unlock loads the identity with the passphrase and builds the encryption
// provider and the services that need it.
func (a *App) Unlock(passphrase string) (*Runtime, error) {
	id, err := a.Identities.LoadIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("loading encryption provider state: %w", err)
	}

	provider := omemo.NewProvider(
		a.Config.Address, id, a.Relay,
		a.prekeyStore, a.sessionStore, a.ratchetStore, a.trustStore,
		a.Log,
	)

	policy, err := trust.PolicyByName(a.Config.TrustPolicy, a.Log)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Identity: id,
		Provider: provider,
		Messages: message.New(a.Config.Address, a.Relay, provider, a.Log),
		Workflow: send.NewWorkflow(provider, policy, a.Log),
	}, nil
}

// Session opens a fresh relay session for the unlocked device.
func (a *App) Session(rt *Runtime) domain.Session {
	return session.New(a.Config.Address, rt.Identity.DeviceID, a.Relay, a.Log)
}
