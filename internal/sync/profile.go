package sync

import (
	"context"
	"fmt"

	"github.com/nkarpov/telesync/internal/tg"
	"go.uber.org/zap"
)

// ProfileName copies first name, last name and bio from sender to
// recipient. Unset source fields arrive as empty strings from the client
// and overwrite the recipient's fields as empty, never skipped.
type ProfileName struct {
	sender    tg.Client
	recipient tg.Client
	job       *Job
	logger    *zap.Logger
}

// NewProfileName creates the profile name/bio engine for one run.
func NewProfileName(sender, recipient tg.Client, job *Job, logger *zap.Logger) *ProfileName {
	return &ProfileName{sender: sender, recipient: recipient, job: job, logger: logger}
}

// Run executes the profile name job: one step per copied field.
func (p *ProfileName) Run(ctx context.Context) error {
	if err := connectBoth(ctx, p.sender, p.recipient); err != nil {
		return err
	}

	p.job.SetTotal(3)
	me, err := p.sender.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch sender profile: %w", err)
	}
	p.job.Step(1) // first name
	p.job.Step(2) // last name
	p.job.Step(3) // bio

	if err := p.recipient.UpdateProfile(ctx, me); err != nil {
		return fmt.Errorf("update recipient profile: %w", err)
	}
	p.logger.Info("profile fields copied")
	return nil
}

// ProfileMedia copies avatar photos and videos oldest-to-newest so the
// recipient ends up with the same avatar order and the same current avatar.
type ProfileMedia struct {
	sender    tg.Client
	recipient tg.Client
	pace      *Pacer
	job       *Job
	logger    *zap.Logger
}

// NewProfileMedia creates the avatar engine for one run.
func NewProfileMedia(sender, recipient tg.Client, pace *Pacer, job *Job, logger *zap.Logger) *ProfileMedia {
	return &ProfileMedia{sender: sender, recipient: recipient, pace: pace, job: job, logger: logger}
}

// Run executes the avatar job. A failed item aborts the remaining avatars.
func (p *ProfileMedia) Run(ctx context.Context) error {
	if err := connectBoth(ctx, p.sender, p.recipient); err != nil {
		return err
	}

	avatars, err := p.sender.Avatars(ctx)
	if err != nil {
		return fmt.Errorf("fetch avatars: %w", err)
	}
	p.job.SetTotal(len(avatars))

	// Platform order is newest-first; upload oldest first.
	for i := len(avatars) - 1; i >= 0; i-- {
		a := avatars[i]
		p.job.Step(len(avatars) - i)

		if err := p.pace.Wait(ctx); err != nil {
			return err
		}
		blob, err := p.sender.DownloadAvatar(ctx, a)
		if err != nil {
			return fmt.Errorf("download avatar: %w", err)
		}

		name := "telesync_" + a.Date.Format("2006_01_02_15_04_05")
		if a.Video {
			name += ".mp4"
		} else {
			name += ".jpeg"
		}
		if err := p.recipient.UploadAvatar(ctx, name, blob, a.Video); err != nil {
			return fmt.Errorf("upload avatar: %w", err)
		}
	}

	p.logger.Info("avatars copied", zap.Int("count", len(avatars)))
	return nil
}
