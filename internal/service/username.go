package service

import (
	"context"
	"fmt"
	"strings"

	"accounts-service/internal/store"
)

// maxUsernameAttempts bounds the collision retry loop.
const maxUsernameAttempts = 50

// usernameBase derives the username seed from the email local part:
// lowercased, non-alphanumerics dropped.
func usernameBase(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// allocateUsername finds a free username by appending a numeric suffix,
// giving up after maxUsernameAttempts candidates.
func allocateUsername(ctx context.Context, st store.Store, email string) (string, error) {
	base := usernameBase(email)
	for i := 1; i <= maxUsernameAttempts; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}

		taken, err := st.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrUsernameExhausted
}
