package domain

import "strings"

// AnonymousName is shown for authors with no known profile.
const AnonymousName = "Anonymous"

// UserProfile is the presentation data kept for an identity-platform user.
type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Name picks the label shown next to a user's reviews.
func (u UserProfile) Name() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	if u.Email != "" {
		return u.Email
	}
	return AnonymousName
}
