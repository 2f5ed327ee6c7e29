package sync

import (
	"context"
	"fmt"

	"github.com/nkarpov/telesync/internal/tg"
	"go.uber.org/zap"
)

// Privacy copies the per-category privacy rules and the global privacy
// toggles. Rule lists are translated through tg.TranslateRules; target
// user/chat lists are not migrated.
type Privacy struct {
	sender    tg.Client
	recipient tg.Client
	pace      *Pacer
	job       *Job
	logger    *zap.Logger
}

// NewPrivacy creates the privacy engine for one run.
func NewPrivacy(sender, recipient tg.Client, pace *Pacer, job *Job, logger *zap.Logger) *Privacy {
	return &Privacy{sender: sender, recipient: recipient, pace: pace, job: job, logger: logger}
}

// Run executes the privacy job: one progress step per category, plus one
// for the global settings copy.
func (p *Privacy) Run(ctx context.Context) error {
	if err := connectBoth(ctx, p.sender, p.recipient); err != nil {
		return err
	}

	keys := tg.PrivacyKeys()
	p.job.SetTotal(len(keys) + 1)

	for i, key := range keys {
		if err := p.pace.Wait(ctx); err != nil {
			return err
		}
		rules, err := p.sender.PrivacyRules(ctx, key)
		if err != nil {
			return fmt.Errorf("fetch %s rules: %w", key, err)
		}
		if err := p.recipient.SetPrivacyRules(ctx, key, tg.TranslateRules(rules)); err != nil {
			return fmt.Errorf("set %s rules: %w", key, err)
		}
		p.job.Step(i + 1)
	}

	gp, err := p.sender.GlobalPrivacy(ctx)
	if err != nil {
		return fmt.Errorf("fetch global privacy: %w", err)
	}
	if err := p.recipient.SetGlobalPrivacy(ctx, gp); err != nil {
		return fmt.Errorf("set global privacy: %w", err)
	}
	p.job.Step(len(keys) + 1)

	p.logger.Info("privacy settings copied", zap.Int("categories", len(keys)))
	return nil
}
