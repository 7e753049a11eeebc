// Package domain holds concepts shared across the lounge and DM subsystems.
package domain

// DisplayIdentity is the public face of a user attached to messages and
// thread listings. It is decoration: engines must render messages without
// it and patch it in once hydration resolves.
type DisplayIdentity struct {
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	AvatarURL  string   `json:"avatar_url"`
	RoleBadges []string `json:"role_badges"`
}

const ModeratorBadge = "moderator"

func (d DisplayIdentity) IsModerator() bool {
	for _, b := range d.RoleBadges {
		if b == ModeratorBadge {
			return true
		}
	}
	return false
}
