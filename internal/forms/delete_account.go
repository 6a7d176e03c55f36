package forms

import (
	"context"
	"sync"
)

// AccountDeleter deletes the signed-in account
type AccountDeleter interface {
	DeleteUser(ctx context.Context, password string) error
}

// DeleteState is one step of the delete-account flow:
// Idle, ConfirmPending, PasswordEntry or Deleting.
type DeleteState interface {
	deleteState()
}

// Idle: nothing in progress
type Idle struct{}

// ConfirmPending: the confirmation alert is showing
type ConfirmPending struct{}

// PasswordEntry: the password step is visible
type PasswordEntry struct {
	Password string
}

// Deleting: the delete call is in flight
type Deleting struct {
	Password string
}

func (Idle) deleteState()           {}
func (ConfirmPending) deleteState() {}
func (PasswordEntry) deleteState()  {}
func (Deleting) deleteState()       {}

// DeleteAccountFlow drives the two-step account deletion
type DeleteAccountFlow struct {
	auth   AccountDeleter
	alerts Alerter

	mu    sync.Mutex
	state DeleteState
}

func NewDeleteAccountFlow(auth AccountDeleter, alerts Alerter) *DeleteAccountFlow {
	return &DeleteAccountFlow{auth: auth, alerts: alerts, state: Idle{}}
}

// State returns the current step
func (f *DeleteAccountFlow) State() DeleteState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Press starts the flow by asking for confirmation. It does nothing unless
// the flow is idle.
func (f *DeleteAccountFlow) Press() {
	if !f.transition(Idle{}, ConfirmPending{}) {
		return
	}

	f.alerts.Alert(TitleDelete, MsgDeleteWarning,
		AlertButton{
			Text:    "Cancel",
			Style:   StyleCancel,
			OnPress: func() { f.transition(ConfirmPending{}, Idle{}) },
		},
		AlertButton{
			Text:    "Continue",
			Style:   StyleDestructive,
			OnPress: func() { f.transition(ConfirmPending{}, PasswordEntry{}) },
		},
	)
}

// SetPassword updates the password typed in the password step
func (f *DeleteAccountFlow) SetPassword(password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.(PasswordEntry); ok {
		f.state = PasswordEntry{Password: password}
	}
}

// Cancel closes the password step and forgets the password
func (f *DeleteAccountFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.(PasswordEntry); ok {
		f.state = Idle{}
	}
}

// Confirm deletes the account with the entered password. On failure the
// password step stays open with the password kept for a retry.
func (f *DeleteAccountFlow) Confirm(ctx context.Context) error {
	f.mu.Lock()
	entry, ok := f.state.(PasswordEntry)
	if !ok {
		_, deleting := f.state.(Deleting)
		f.mu.Unlock()
		if deleting {
			return ErrBusy
		}
		return ErrNotConfirmed
	}
	if entry.Password == "" {
		f.mu.Unlock()
		f.alerts.Alert(TitleError, MsgEnterPassword)
		return ErrInvalidInput
	}
	f.state = Deleting{Password: entry.Password}
	f.mu.Unlock()

	err := f.auth.DeleteUser(ctx, entry.Password)

	f.mu.Lock()
	if err != nil {
		f.state = PasswordEntry{Password: entry.Password}
	} else {
		f.state = Idle{}
	}
	f.mu.Unlock()

	if err != nil {
		f.alerts.Alert(TitleDeleteFailed, errorMessage(err))
		return err
	}
	return nil
}

// transition moves from one step to the next if the flow is in from
func (f *DeleteAccountFlow) transition(from, to DeleteState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != from {
		return false
	}
	f.state = to
	return true
}
