package security

import (
	"strings"

	"github.com/pquerna/otp/totp"
)

// totpIssuer is the issuer label shown in authenticator apps.
const totpIssuer = "PDFGate"

// GenerateTOTPSecret provisions a new TOTP secret for the account and returns
// the secret plus the otpauth:// URI for enrollment.
func GenerateTOTPSecret(accountEmail string) (secret, uri string, err error) {
	key, errGenerate := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: strings.TrimSpace(accountEmail),
	})
	if errGenerate != nil {
		return "", "", errGenerate
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTP reports whether the code matches the secret for the current
// time step.
func ValidateTOTP(secret, code string) bool {
	secret = strings.TrimSpace(secret)
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}
