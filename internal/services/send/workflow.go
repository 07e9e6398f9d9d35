package send

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"cipherpost/internal/domain"
	"cipherpost/internal/omemo"
)

// DefaultMaxAttempts bounds the trust/exclusion retry loop. Each recoverable
// failure shrinks the recipient device set or settles a trust decision, so
// legitimate sends converge long before the cap.
const DefaultMaxAttempts = 10

// Status is the terminal outcome of a delivery attempt.
type Status int

const (
	// StatusSent means the encrypted envelope was handed to the relay.
	StatusSent Status = iota
	// StatusAborted means the workflow stopped cleanly without delivering.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result describes how a delivery attempt ended.
type Result struct {
	Status Status
	Reason string
}

// Workflow performs one encrypted send per call. It is safe to reuse across
// calls; the per-recipient exclusion set is owned by each invocation.
type Workflow struct {
	enc         domain.Encryptor
	policy      domain.TrustPolicy
	maxAttempts int
	log         *slog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithMaxAttempts overrides the retry cap. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(w *Workflow) {
		if n >= 1 {
			w.maxAttempts = n
		}
	}
}

// NewWorkflow builds a send workflow around an encryptor and trust policy.
func NewWorkflow(
	enc domain.Encryptor,
	policy domain.TrustPolicy,
	log *slog.Logger,
	opts ...Option,
) *Workflow {
	if log == nil {
		log = slog.Default()
	}
	w := &Workflow{
		enc:         enc,
		policy:      policy,
		maxAttempts: DefaultMaxAttempts,
		log:         log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Send opens the session, delivers plaintext to the recipient encrypted for
// every eligible device, and closes the session exactly once no matter how
// the attempt ends.
func (w *Workflow) Send(
	ctx context.Context,
	sess domain.Session,
	to domain.Address,
	plaintext string,
) (Result, error) {
	defer func() {
		if err := sess.Close(); err != nil {
			w.log.Debug("session close failed", "err", err)
		}
	}()

	if err := sess.Open(ctx); err != nil {
		return Result{Status: StatusAborted, Reason: "session-open"},
			fmt.Errorf("opening session: %w", err)
	}

	envelope := domain.Envelope{
		ID:     uuid.NewString(),
		To:     to,
		Kind:   domain.KindChat,
		Scheme: omemo.Scheme,
	}
	recipients := []domain.Address{to}
	exclude := make(map[domain.Address][]domain.DeviceID)

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		payload, err := w.enc.Encrypt(ctx, []byte(plaintext), recipients, exclude)
		if err == nil {
			envelope.Encrypted = payload
			if err := sess.SendEnvelope(ctx, envelope); err != nil {
				return Result{Status: StatusAborted, Reason: "relay-send"},
					fmt.Errorf("sending envelope: %w", err)
			}
			w.log.Debug("message sent", "to", to, "attempt", attempt,
				"devices", len(payload.Keys))
			return Result{Status: StatusSent}, nil
		}

		var undecided *omemo.TrustUndecidedError
		if errors.As(err, &undecided) {
			if err := w.settleTrust(undecided); err != nil {
				return Result{Status: StatusAborted, Reason: "trust-decision"}, err
			}
			continue
		}

		var prepare *omemo.PrepareFailedError
		if errors.As(err, &prepare) {
			if err := w.handlePrepareFailure(ctx, sess, prepare, exclude); err != nil {
				return Result{Status: StatusAborted, Reason: "prepare-failed"}, err
			}
			continue
		}

		var fetch *omemo.FetchError
		if errors.As(err, &fetch) {
			w.log.Debug("device-list fetch failed", "recipient", fetch.Recipient,
				"err", fetch.Err)
			sess.SendPlain(ctx, to,
				"I could not retrieve your device information, "+
					"so this message cannot be delivered securely.")
			return Result{Status: StatusAborted, Reason: "fetch-error"}, nil
		}

		sess.SendPlain(ctx, to,
			"An unexpected problem prevented me from encrypting this message.")
		return Result{Status: StatusAborted, Reason: "encrypt-error"},
			fmt.Errorf("encrypting message: %w", err)
	}

	return Result{Status: StatusAborted, Reason: "retry-exhausted"},
		fmt.Errorf("giving up after %d encryption attempts", w.maxAttempts)
}

// settleTrust asks the policy to decide on the undecided device and records
// the decision so the next attempt can act on it.
func (w *Workflow) settleTrust(undecided *omemo.TrustUndecidedError) error {
	level, err := w.policy.Decide(
		undecided.Recipient, undecided.Device, undecided.IdentityKey)
	if err != nil {
		return fmt.Errorf("deciding trust for device %d of %s: %w",
			undecided.Device, undecided.Recipient, err)
	}
	if err := w.enc.SetTrust(
		undecided.Recipient, undecided.Device, undecided.IdentityKey, level,
	); err != nil {
		return fmt.Errorf("recording trust for device %d of %s: %w",
			undecided.Device, undecided.Recipient, err)
	}
	w.log.Debug("trust decided", "peer", undecided.Recipient,
		"device", undecided.Device, "level", level)
	return nil
}

// handlePrepareFailure excludes devices with missing key bundles after
// telling the recipient in plaintext which devices will miss the message.
// Any other per-device problem is fatal.
func (w *Workflow) handlePrepareFailure(
	ctx context.Context,
	sess domain.Session,
	prepare *omemo.PrepareFailedError,
	exclude map[domain.Address][]domain.DeviceID,
) error {
	for _, problem := range prepare.Problems {
		if !errors.Is(problem.Err, omemo.ErrMissingBundle) {
			sess.SendPlain(ctx, problem.Recipient,
				"An unexpected problem prevented me from encrypting this message.")
			return fmt.Errorf("preparing encryption: %w", problem)
		}
		sess.SendPlain(ctx, problem.Recipient, fmt.Sprintf(
			"Could not find keys for device %d of recipient %s. Skipping.",
			problem.Device, problem.Recipient))
		if !slices.Contains(exclude[problem.Recipient], problem.Device) {
			exclude[problem.Recipient] = append(
				exclude[problem.Recipient], problem.Device)
		}
		w.log.Debug("excluding device with missing bundle",
			"peer", problem.Recipient, "device", problem.Device)
	}
	return nil
}
