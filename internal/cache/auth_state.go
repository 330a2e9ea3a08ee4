package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/swadeshika/storefront/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// UserAuthState is the per-user snapshot the auth middleware checks on
// each request. It avoids a database hit while still letting a role
// change or a disable take effect within the cache TTL.
type UserAuthState struct {
	UserID    uint   `json:"user_id"`
	Status    string `json:"status"`
	Role      string `json:"role"`
	UpdatedAt int64  `json:"updated_at"`
}

func userAuthStateKey(userID uint) string {
	return fmt.Sprintf("auth:user:%d", userID)
}

// BuildUserAuthState builds a snapshot from the user row.
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:    user.ID,
		Status:    user.Status,
		Role:      user.Role,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetUserAuthState reads the cached snapshot. The bool reports a hit.
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state UserAuthState
	hit, err := GetJSON(ctx, userAuthStateKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetUserAuthState stores the snapshot.
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState drops the snapshot, forcing a refresh on next use.
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}
