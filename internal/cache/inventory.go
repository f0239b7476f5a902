package cache

import (
	"time"

	"github.com/google/uuid"
)

// ProfileTTL bounds how stale a cached owner profile may be.
const ProfileTTL = 5 * time.Minute

// UserProfileKey is the key of the OwnerProfile projection for userID.
func UserProfileKey(userID uuid.UUID) string {
	return "user:" + userID.String() + ":profile"
}
