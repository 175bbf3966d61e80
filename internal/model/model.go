package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type LoginAttempt struct {
	ID          string
	Email       string
	IPAddress   string
	AttemptedAt time.Time
}

type AuditEntry struct {
	ID        string
	Action    string
	Resource  string
	UserID    *string
	Details   *string
	IPAddress string
	CreatedAt time.Time
}

type InstitutionStatus string

const (
	StatusPending  InstitutionStatus = "PENDING"
	StatusApproved InstitutionStatus = "APPROVED"
	StatusRejected InstitutionStatus = "REJECTED"
)

type Institution struct {
	ID           string
	OwnerID      string
	Name         string
	Description  string
	Website      *string
	ContactEmail string
	ContactPhone *string
	FoundingYear *string
	Status       InstitutionStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RankedInstitution is an approved institution together with its vote count.
type RankedInstitution struct {
	Institution
	Votes int64
}

type Vote struct {
	ID            string
	UserID        string
	InstitutionID string
	IPAddress     string
	CreatedAt     time.Time
}
