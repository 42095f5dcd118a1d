package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"forum-importer/core/reconcile"
	"forum-importer/core/utils"
	"forum-importer/feature/platform"
	pmodels "forum-importer/feature/platform/models"
	"forum-importer/feature/zendesk/models"

	"go.uber.org/zap"
)

const maxUsernameLength = 255

// Directory is the platform's identity service.
type Directory interface {
	platform.Transactor
	FindUserByEmail(ctx context.Context, email string) (*pmodels.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *pmodels.User) error
	AssociateOpenID(ctx context.Context, userID uint, openIDURL, provider string) error
}

// Staging is the part of the staging store identity reconciliation reads and writes.
type Staging interface {
	Users(ctx context.Context) ([]models.User, error)
	SetUserBridge(ctx context.Context, userID int64, targetUserID uint) error
}

// Bridge maps staged user ids to platform user ids.
type Bridge map[int64]uint

// Reconciler turns staged users into platform accounts.
type Reconciler struct {
	staging  Staging
	dir      Directory
	cfg      Config
	feedback reconcile.Feedback
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconciler creates an identity reconciler.
func NewReconciler(staging Staging, dir Directory, cfg Config, feedback reconcile.Feedback, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		staging:  staging,
		dir:      dir,
		cfg:      cfg,
		feedback: feedback,
		logger:   logger,
		now:      time.Now,
	}
}

// Reconcile bridges every staged user to a platform account and returns the
// resulting bridge. Users that cannot be created are dropped; only staging
// store failures abort the run.
func (r *Reconciler) Reconcile(ctx context.Context) (Bridge, reconcile.Summary, error) {
	var summary reconcile.Summary

	users, err := r.staging.Users(ctx)
	if err != nil {
		return nil, summary, err
	}

	bridge := make(Bridge, len(users))
	byEmail := make(map[string]uint)
	for _, u := range users {
		if email := emailKey(u); email != "" && u.TargetUserID != nil {
			byEmail[email] = *u.TargetUserID
		}
	}

	for i := range users {
		u := &users[i]

		if u.TargetUserID != nil {
			bridge[u.UserID] = *u.TargetUserID
			summary.UsersAlreadyBridged++
			r.feedback.Progress(reconcile.KindUser, i+1)
			continue
		}

		target, outcome, err := r.resolve(ctx, u, byEmail)
		if err != nil {
			if !reconcile.IsRecoverable(err) {
				return bridge, summary, err
			}
			r.feedback.Dropped(reconcile.KindUser, u.UserID, err)
			summary.UsersDropped++
			r.feedback.Progress(reconcile.KindUser, i+1)
			continue
		}

		if err := r.staging.SetUserBridge(ctx, u.UserID, target.ID); err != nil {
			return bridge, summary, fmt.Errorf("failed to bridge staged user %d: %w", u.UserID, err)
		}
		bridge[u.UserID] = target.ID
		if email := emailKey(*u); email != "" {
			byEmail[email] = target.ID
		}

		switch outcome {
		case reconcile.OutcomeCreated:
			summary.UsersCreated++
			r.associate(ctx, u, target)
		case reconcile.OutcomeLinked:
			summary.UsersLinked++
		}
		r.feedback.Progress(reconcile.KindUser, i+1)
	}

	r.logger.Info("Users reconciled",
		zap.Int("created", summary.UsersCreated),
		zap.Int("linked", summary.UsersLinked),
		zap.Int("already_bridged", summary.UsersAlreadyBridged),
		zap.Int("dropped", summary.UsersDropped),
	)
	return bridge, summary, nil
}

// resolve finds or creates the platform account of a staged user. Accounts
// are matched by the original address only, either on the platform or among
// staged users bridged before. Masked addresses are never matched.
func (r *Reconciler) resolve(ctx context.Context, u *models.User, byEmail map[string]uint) (*pmodels.User, reconcile.Outcome, error) {
	email := strings.TrimSpace(u.EmailAddress())
	if email == "" {
		candidate := UsernameFromName(u.Name)
		if candidate == "" {
			candidate = "user_" + strconv.FormatInt(u.UserID, 10)
		}
		user, err := r.create(ctx, u, candidate, "")
		return user, reconcile.OutcomeCreated, err
	}

	existing, err := r.dir.FindUserByEmail(ctx, email)
	if err == nil {
		return existing, reconcile.OutcomeLinked, nil
	}
	if !errors.Is(err, platform.ErrNotFound) {
		return nil, reconcile.OutcomePending, reconcile.TargetError("find_user", err)
	}
	if id, ok := byEmail[emailKey(*u)]; ok {
		return &pmodels.User{ID: id}, reconcile.OutcomeLinked, nil
	}

	masked := r.cfg.Mask(email)
	user, err := r.create(ctx, u, masked, masked)
	return user, reconcile.OutcomeCreated, err
}

// emailKey normalizes the staged address for matching staged users to each other.
func emailKey(u models.User) string {
	return strings.ToLower(strings.TrimSpace(u.EmailAddress()))
}

// create inserts a platform user under the first free variant of candidate.
// The collision check and the insert share one transaction.
func (r *Reconciler) create(ctx context.Context, u *models.User, candidate, email string) (*pmodels.User, error) {
	joined := r.now().UTC()
	if u.CreatedAt != nil {
		joined = *u.CreatedAt
	}
	lastSeen := joined
	if u.LastLogin != nil {
		lastSeen = *u.LastLogin
	}

	user := &pmodels.User{
		Email:        email,
		EmailIsValid: email != "" && u.IsVerified && email == u.EmailAddress(),
		DateJoined:   joined,
		LastSeen:     lastSeen,
		IsActive:     u.IsActive,
	}

	err := r.dir.Transaction(ctx, func(ctx context.Context) error {
		username, err := r.uniqueUsername(ctx, candidate)
		if err != nil {
			return err
		}
		user.Username = username
		return r.dir.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, reconcile.TargetError("create_user", err)
	}
	return user, nil
}

// uniqueUsername returns candidate, or candidate followed by the smallest
// positive number that no platform user holds yet.
func (r *Reconciler) uniqueUsername(ctx context.Context, candidate string) (string, error) {
	for n := 0; ; n++ {
		suffix := ""
		if n > 0 {
			suffix = strconv.Itoa(n)
		}
		username := utils.Truncate(candidate, maxUsernameLength-len(suffix)) + suffix

		taken, err := r.dir.UsernameExists(ctx, username)
		if err != nil {
			return "", err
		}
		if !taken {
			return username, nil
		}
	}
}

// associate links the staged OpenID url to a created account. Best-effort:
// the outcome is discarded and never blocks the user.
func (r *Reconciler) associate(ctx context.Context, u *models.User, target *pmodels.User) {
	if !r.cfg.OpenID || u.OpenIDURL == nil || *u.OpenIDURL == "" {
		return
	}
	if err := r.dir.AssociateOpenID(ctx, target.ID, *u.OpenIDURL, ProviderName(*u.OpenIDURL)); err != nil {
		r.logger.Debug("OpenID association skipped", zap.Int64("user_id", u.UserID), zap.Error(err))
	}
}
