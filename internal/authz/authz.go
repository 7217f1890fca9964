// Package authz implements the per-request authorization pipeline: the login
// and token flows converge on the same suspension and subscription checks,
// and every protected request re-derives the verdict from stored state.
package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdfgate/pdfgate/internal/config"
	"github.com/pdfgate/pdfgate/internal/models"
	"github.com/pdfgate/pdfgate/internal/security"
	"github.com/pdfgate/pdfgate/internal/subscription"
	"gorm.io/gorm"
)

// Pipeline failure reasons. Handlers map these to status codes and the
// machine-readable codes the client uses to differentiate messaging.
var (
	ErrInvalidCredentials  = errors.New("authz: invalid credentials")
	ErrAccountSuspended    = errors.New("authz: account suspended")
	ErrNoSubscription      = errors.New("authz: no active subscription")
	ErrSubscriptionExpired = errors.New("authz: subscription expired")
	ErrNotAuthenticated    = errors.New("authz: not authenticated")
	ErrNotAuthorized       = errors.New("authz: not authorized")
	ErrTOTPRequired        = errors.New("authz: totp code required")
	ErrInvalidTOTP         = errors.New("authz: invalid totp code")
)

// Client-facing reason codes carried alongside 403 responses.
const (
	CodeNoSubscription      = "NO_SUBSCRIPTION"
	CodeSubscriptionExpired = "SUBSCRIPTION_EXPIRED"
)

// Verdict is the allow outcome of the pipeline: the authenticated user plus
// the subscription that admitted them (nil for admins).
type Verdict struct {
	User         *models.User
	Subscription *models.Subscription
}

// Pipeline composes the credential store, the subscription ledger, and the
// token service into a single allow/deny decision.
type Pipeline struct {
	db     *gorm.DB
	ledger *subscription.Ledger
	jwt    config.JWTConfig
	nowFn  func() time.Time
}

// NewPipeline constructs a Pipeline. nowFn defaults to time.Now.
func NewPipeline(conn *gorm.DB, ledger *subscription.Ledger, jwtCfg config.JWTConfig, nowFn func() time.Time) *Pipeline {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Pipeline{db: conn, ledger: ledger, jwt: jwtCfg, nowFn: nowFn}
}

// TokenExpiry returns the configured session token lifetime.
func (p *Pipeline) TokenExpiry() time.Duration {
	return p.jwt.Expiry
}

// Login authenticates email+password (plus a TOTP code when the account has
// one enrolled), runs the shared checks, and issues a session token.
// Absent users and wrong passwords produce the same ErrInvalidCredentials so
// the response never leaks account existence.
func (p *Pipeline) Login(ctx context.Context, email, password, totpCode string) (*Verdict, string, error) {
	var user models.User
	errFind := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("authz: lookup user: %w", errFind)
	}
	if !security.CheckPassword(user.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	if user.TOTPSecret != "" {
		if totpCode == "" {
			return nil, "", ErrTOTPRequired
		}
		if !security.ValidateTOTP(user.TOTPSecret, totpCode) {
			return nil, "", ErrInvalidTOTP
		}
	}

	verdict, errCheck := p.sharedChecks(ctx, &user)
	if errCheck != nil {
		return nil, "", errCheck
	}

	token, errIssue := security.IssueToken(p.jwt.Secret, user.ID, p.jwt.Expiry, p.nowFn().UTC())
	if errIssue != nil {
		return nil, "", errIssue
	}
	return verdict, token, nil
}

// Authenticate verifies a session token and loads its user. It fails with
// ErrNotAuthenticated for invalid or expired tokens and vanished users, and
// with ErrAccountSuspended for suspended accounts.
func (p *Pipeline) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, errParse := security.ParseToken(p.jwt.Secret, token)
	if errParse != nil {
		return nil, ErrNotAuthenticated
	}

	var user models.User
	errFind := p.db.WithContext(ctx).First(&user, userID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("authz: load user: %w", errFind)
	}
	if user.IsSuspended {
		return nil, ErrAccountSuspended
	}
	return &user, nil
}

// Authorize runs the full per-request flow: token verification, user load,
// and the shared suspension/subscription checks.
func (p *Pipeline) Authorize(ctx context.Context, token string) (*Verdict, error) {
	user, errAuth := p.Authenticate(ctx, token)
	if errAuth != nil {
		return nil, errAuth
	}
	return p.sharedChecks(ctx, user)
}

// CheckAccess runs the shared post-authentication checks for an already
// loaded user, as the per-request middleware does after Authenticate.
func (p *Pipeline) CheckAccess(ctx context.Context, user *models.User) (*Verdict, error) {
	return p.sharedChecks(ctx, user)
}

// sharedChecks applies the post-authentication checks both flows share, in
// order, short-circuiting on the first failure:
// suspended, admin exemption, active subscription, expiry.
func (p *Pipeline) sharedChecks(ctx context.Context, user *models.User) (*Verdict, error) {
	if user.IsSuspended {
		return nil, ErrAccountSuspended
	}
	if user.IsAdmin() {
		return &Verdict{User: user}, nil
	}

	sub, errSub := p.ledger.CurrentActive(ctx, user.ID)
	if errSub != nil {
		if errors.Is(errSub, subscription.ErrNoActiveSubscription) {
			return nil, ErrNoSubscription
		}
		return nil, errSub
	}
	if sub.IsExpired(p.nowFn().UTC()) {
		return nil, ErrSubscriptionExpired
	}
	return &Verdict{User: user, Subscription: sub}, nil
}
