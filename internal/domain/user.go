package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role names understood by the authorization layer.
const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
	RoleEmployee  = "employee"
)

// AllRoles is the fixed set of assignable roles.
var AllRoles = []string{RoleAdmin, RoleDeveloper, RoleEmployee}

// NotificationPreference selects one of the per-user opt-in flags.
type NotificationPreference string

const (
	NotifyOnComment      NotificationPreference = "comment"
	NotifyOnPost         NotificationPreference = "post"
	NotifyOnDocument     NotificationPreference = "document"
	NotifyOnAnnouncement NotificationPreference = "announcement"
)

// NotificationSettings holds the four independent opt-in flags owned by a user.
type NotificationSettings struct {
	OnComment      bool
	OnPost         bool
	OnDocument     bool
	OnAnnouncement bool
}

// User is a directory entry: identity, roles and notification preferences.
type User struct {
	ID           string
	Email        string
	Name         string
	Surname      string
	PasswordHash string
	AvatarURL    string
	Roles        []string
	Notify       NotificationSettings
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a user with the default employee role and all
// notification preferences enabled.
func NewUser(email, name, surname, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           "usr_" + uuid.New().String(),
		Email:        email,
		Name:         name,
		Surname:      surname,
		PasswordHash: passwordHash,
		Roles:        []string{RoleEmployee},
		Notify: NotificationSettings{
			OnComment:      true,
			OnPost:         true,
			OnDocument:     true,
			OnAnnouncement: true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FullName returns the display name used in notifications and listings.
func (u *User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WantsNotification reports whether the given preference flag is enabled.
func (u *User) WantsNotification(pref NotificationPreference) bool {
	switch pref {
	case NotifyOnComment:
		return u.Notify.OnComment
	case NotifyOnPost:
		return u.Notify.OnPost
	case NotifyOnDocument:
		return u.Notify.OnDocument
	case NotifyOnAnnouncement:
		return u.Notify.OnAnnouncement
	default:
		return false
	}
}
