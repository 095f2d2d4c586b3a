package providers

import "context"

// Mailer delivers transactional mail
type Mailer interface {
	// SendOTP delivers a one-time password to the given address
	SendOTP(ctx context.Context, email, code string) error
}
