package mail

import (
	"context"

	"github.com/platolabs/onboard/pkg/slogx"
)

// LogMailer writes codes to the log instead of sending email. Dev use
// only; never run it in an environment with real users.
type LogMailer struct{}

func (LogMailer) SendVerificationEmail(ctx context.Context, address, code string) error {
	slogx.FromContext(ctx).Info("verification email (log mailer)",
		"to", address,
		"code", code,
	)
	return nil
}
