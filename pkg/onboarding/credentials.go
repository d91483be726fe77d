package onboarding

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

// Mode selects between the sign-in and register paths of the credential form.
type Mode string

const (
	ModeSignIn   Mode = "signIn"
	ModeRegister Mode = "register"
)

// Outcome tells the caller which step follows a successful submission.
type Outcome string

const (
	// ProceedToSelection means a pending registration was written and the
	// flow moves to resource selection.
	ProceedToSelection Outcome = "proceedToSelection"
	// ProceedToSession means sign-in succeeded and the flow moves straight
	// to session bootstrap.
	ProceedToSession Outcome = "proceedToSession"
)

// Form is the credential form input.
type Form struct {
	Mode            Mode
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Result is the successful outcome of a form submission.
type Result struct {
	Outcome Outcome
	// Session is set when Outcome is ProceedToSession.
	Session *vermisdk.AuthSession
}

var formEmailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Collector validates credential forms. Register submissions persist a
// pending registration; sign-in submissions delegate to the provisioner.
type Collector struct {
	pending     *PendingStore
	provisioner *Provisioner
}

// NewCollector constructs a Collector.
func NewCollector(pending *PendingStore, provisioner *Provisioner) *Collector {
	if pending == nil {
		panic("pending store is required")
	}
	if provisioner == nil {
		panic("provisioner is required")
	}
	return &Collector{pending: pending, provisioner: provisioner}
}

// Submit validates the form. On validation failure it returns a
// *ValidationError and performs no side effect.
func (c *Collector) Submit(ctx context.Context, form Form) (Result, error) {
	fieldErrors := FieldErrors{}

	email := strings.TrimSpace(form.Email)
	if email == "" {
		fieldErrors.add("email", "email is required")
	} else if !formEmailPattern.MatchString(email) {
		fieldErrors.add("email", "email is not valid")
	}

	if len(form.Password) < 8 {
		fieldErrors.add("password", "password must be at least 8 characters")
	}

	name := strings.TrimSpace(form.Name)
	if form.Mode == ModeRegister {
		if name == "" {
			fieldErrors.add("name", "name is required")
		}
		if form.Password != form.ConfirmPassword {
			fieldErrors.add("confirmPassword", "passwords do not match")
		}
	}

	if len(fieldErrors) > 0 {
		return Result{}, &ValidationError{Fields: fieldErrors}
	}

	if form.Mode == ModeSignIn {
		session, err := c.provisioner.SignIn(ctx, email, form.Password)
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: ProceedToSession, Session: &session}, nil
	}

	registration := PendingRegistration{
		Name:     titleCase(name),
		Email:    email,
		Password: form.Password,
	}
	if err := c.pending.Put(registration); err != nil {
		return Result{}, err
	}

	return Result{Outcome: ProceedToSelection}, nil
}

// titleCase uppercases the first rune of each word and lowercases the rest.
func titleCase(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
