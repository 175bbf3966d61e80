// Package audit appends security-relevant events to a persistent trail.
// Writes are best-effort: audit unavailability must never block a login,
// registration, vote or admin action.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kalissr/voting-system/internal/model"
)

type Action string

const (
	ActionUserRegister        Action = "user.register"
	ActionUserLogin           Action = "user.login"
	ActionUserLogout          Action = "user.logout"
	ActionUserPasswordChange  Action = "user.password_change"
	ActionVoteCast            Action = "vote.cast"
	ActionApplicationSubmit   Action = "application.submit"
	ActionApplicationApprove  Action = "application.approve"
	ActionApplicationReject   Action = "application.reject"
	ActionAdminLogin          Action = "admin.login"
	ActionAdminLogout         Action = "admin.logout"
	ActionAdminPasswordChange Action = "admin.password_change"
)

type EntryStore interface {
	InsertAuditEntry(ctx context.Context, entry model.AuditEntry) error
}

type Recorder struct {
	store EntryStore
}

func NewRecorder(store EntryStore) *Recorder {
	return &Recorder{store: store}
}

// Record appends an entry. userID and details may be empty. Store failures
// are logged locally and swallowed.
func (r *Recorder) Record(ctx context.Context, action Action, resource, userID, details, ip string) {
	entry := model.AuditEntry{
		ID:        uuid.NewString(),
		Action:    string(action),
		Resource:  resource,
		IPAddress: ip,
		CreatedAt: time.Now().UTC(),
	}
	if userID != "" {
		entry.UserID = &userID
	}
	if details != "" {
		entry.Details = &details
	}
	if err := r.store.InsertAuditEntry(ctx, entry); err != nil {
		log.Printf("audit write failed: action=%s resource=%s: %v", action, resource, err)
	}
}
