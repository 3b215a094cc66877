// Package mail sends the verification emails. The Mailer interface is
// the seam the services depend on; delivery failures surface as
// ErrTransport so they never get mistaken for validation failures.
package mail

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransport wraps any delivery failure from the underlying mail
// transport.
var ErrTransport = errors.New("mail: transport failure")

type Mailer interface {
	// SendVerificationEmail delivers the 6-digit code to the address.
	SendVerificationEmail(ctx context.Context, address, code string) error
}

const verificationSubject = "Your Verification Code"

func verificationTextBody(code string) string {
	return fmt.Sprintf("Your verification code is: %s", code)
}

func verificationHTMLBody(code string) string {
	return fmt.Sprintf("<p>Your verification code is: <strong>%s</strong></p>", code)
}
