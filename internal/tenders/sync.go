package tenders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/common/utils"
	"tender-notifier/internal/storage"
	"tender-notifier/internal/tenderapi"
)

// Button is an inline action attached to a message.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Message is one outbound chat message.
type Message struct {
	UserID int64
	Text   string
	Button *Button
}

// Notifier delivers messages. A provider-imposed wait must be reported as
// an errors.FloodControlError carrying the delay.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Pacer spaces consecutive deliveries.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Locker provides cross-process mutual exclusion for the sync cycle.
type Locker interface {
	TryLock(ctx context.Context, name string) (release func(), acquired bool, err error)
}

// CycleLockName is the lock held while a sync cycle runs.
const CycleLockName = "tender-sync-cycle"

// AttachmentsCallback prefixes the callback data of the documents button.
const AttachmentsCallback = "show_sub_atts:"

// SubscriptionResult summarises one subscription within a cycle.
type SubscriptionResult struct {
	UserID    int64  `json:"user_id"`
	Key       string `json:"key"`
	Collected int    `json:"collected"`
	Skipped   int    `json:"already_delivered"`
	Delivered int    `json:"delivered"`
	Failed    int    `json:"failed"`
	LastTS    int64  `json:"last_ts"`
	Advanced  bool   `json:"advanced"`
	Error     string `json:"error,omitempty"`
}

// CycleResult summarises one run of CheckNewTenders.
type CycleResult struct {
	RunID         string               `json:"run_id"`
	Started       time.Time            `json:"started"`
	Duration      time.Duration        `json:"duration"`
	Locked        bool                 `json:"skipped_locked,omitempty"`
	Subscriptions []SubscriptionResult `json:"subscriptions"`
}

// Syncer runs the periodic delivery cycle.
type Syncer struct {
	store     storage.Storage
	tracker   *Tracker
	keys      *Keys
	collector *Collector
	loader    *Loader
	projector *Projector
	notifier  Notifier
	pacer     Pacer
	locker    Locker
	sleep     utils.SleepFunc
	logger    logging.Logger
}

// SyncerOption customises a Syncer.
type SyncerOption func(*Syncer)

// WithLocker serialises cycles across processes.
func WithLocker(l Locker) SyncerOption {
	return func(s *Syncer) { s.locker = l }
}

// WithPacer spaces deliveries.
func WithPacer(p Pacer) SyncerOption {
	return func(s *Syncer) { s.pacer = p }
}

// WithFloodSleep replaces the wait used after a flood-control reply.
func WithFloodSleep(sleep utils.SleepFunc) SyncerOption {
	return func(s *Syncer) { s.sleep = sleep }
}

// NewSyncer wires the cycle. loader should use the Substitute policy so a
// single unavailable detail does not stall the batch.
func NewSyncer(store storage.Storage, tracker *Tracker, keys *Keys, collector *Collector,
	loader *Loader, projector *Projector, notifier Notifier, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		store:     store,
		tracker:   tracker,
		keys:      keys,
		collector: collector,
		loader:    loader,
		projector: projector,
		notifier:  notifier,
		sleep:     utils.SleepContext,
		logger:    logging.Component("sync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckNewTenders processes every subscription once, one at a time.
// Failures are scoped to a subscription and never abort the cycle.
func (s *Syncer) CheckNewTenders(ctx context.Context) (*CycleResult, error) {
	result := &CycleResult{RunID: uuid.NewString(), Started: time.Now()}
	ctx = logging.ContextWith(ctx, logging.RunIDKey, result.RunID)
	logger := s.logger.WithContext(ctx)

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, CycleLockName)
		if err != nil {
			return result, err
		}
		if !ok {
			logger.Info("Sync cycle already running elsewhere, skipping")
			result.Locked = true
			return result, nil
		}
		defer release()
	}

	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return result, err
	}
	logger.Info("Sync cycle started", logging.Int("subscriptions", len(subs)))

	for _, sub := range subs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		res, err := s.SyncSubscription(ctx, sub)
		if err != nil {
			res.Error = err.Error()
			logger.Error("Subscription sync failed", err,
				logging.Int64("user_id", sub.UserID), logging.String("key", sub.Key))
		}
		result.Subscriptions = append(result.Subscriptions, res)
	}

	result.Duration = time.Since(result.Started)
	logger.Info("Sync cycle finished", logging.Duration("duration", result.Duration))
	return result, nil
}

// SyncSubscription delivers every not yet delivered tender published since
// the subscription's watermark, then advances the watermark to the newest
// publication time seen. The watermark is left alone when nothing was
// collected or when collection or a delivered-marker lookup failed.
func (s *Syncer) SyncSubscription(ctx context.Context, sub storage.Subscription) (SubscriptionResult, error) {
	res := SubscriptionResult{UserID: sub.UserID, Key: sub.Key}
	ctx = logging.ContextWith(ctx, logging.UserIDKey, sub.UserID)
	ctx = logging.ContextWith(ctx, logging.TenderKey, sub.Key)
	logger := s.logger.WithContext(ctx)

	lastTS, err := s.tracker.LastTS(ctx, sub.UserID, sub.Key)
	if err != nil {
		return res, err
	}
	res.LastTS = lastTS

	previews, collectErr := s.collector.Collect(ctx, sub.Key, Filter{Since: lastTS})
	if collectErr != nil {
		logger.Warn("Collection incomplete, delivering partial batch", logging.Err(collectErr))
	}
	res.Collected = len(previews)
	if len(previews) == 0 {
		logger.Debug("No new tenders")
		return res, collectErr
	}

	holdWatermark := collectErr != nil
	candidates := make([]tenderapi.Preview, 0, len(previews))
	for _, p := range previews {
		delivered, err := s.tracker.WasDelivered(ctx, sub.UserID, p.ID)
		if err != nil {
			logger.Warn("Delivered check failed, postponing tender",
				logging.String("tender_id", p.ID), logging.Err(err))
			holdWatermark = true
			continue
		}
		if delivered {
			logger.Debug("Tender already delivered", logging.String("tender_id", p.ID))
			res.Skipped++
			continue
		}
		candidates = append(candidates, p)
	}

	keyName := sub.Name
	if keyName == "" {
		keyName = s.keys.DisplayName(ctx, sub.UserID, sub.Key)
	}

	err = s.loader.Each(ctx, candidates, func(d *tenderapi.Detail) error {
		if s.deliver(ctx, logger, sub.UserID, keyName, d) {
			res.Delivered++
		} else {
			res.Failed++
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	if holdWatermark {
		return res, collectErr
	}

	var newest int64
	for _, p := range previews {
		if ts := p.PublishedAt(); ts > newest {
			newest = ts
		}
	}
	if newest > lastTS {
		if err := s.tracker.Advance(ctx, sub.UserID, sub.Key, newest); err != nil {
			return res, err
		}
		res.LastTS = newest
		res.Advanced = true
		logger.Info("Watermark advanced", logging.Int64("from", lastTS), logging.Int64("to", newest))
	}
	return res, nil
}

func (s *Syncer) deliver(ctx context.Context, logger logging.Logger, userID int64, keyName string, d *tenderapi.Detail) bool {
	n := s.projector.Notification(d)
	msg := Message{UserID: userID, Text: SubscriptionText(keyName, n)}

	if len(d.Attachments) > 0 {
		if err := s.store.SaveAttachments(ctx, d.ID, StoredAttachments(d.ID, d.Attachments)); err != nil {
			logger.Warn("Attachment cache write failed", logging.String("tender_id", d.ID), logging.Err(err))
		}
		msg.Button = &Button{Text: AttachmentsButton, Data: AttachmentsCallback + d.ID}
	}

	if s.pacer != nil {
		if err := s.pacer.Wait(ctx); err != nil {
			return false
		}
	}

	if err := s.send(ctx, logger, msg); err != nil {
		logger.Warn("Delivery failed, tender skipped", logging.String("tender_id", d.ID), logging.Err(err))
		return false
	}

	if err := s.tracker.MarkDelivered(ctx, userID, d.ID); err != nil {
		logger.Warn("Delivered marker not stored", logging.String("tender_id", d.ID), logging.Err(err))
	}
	return true
}

// send retries once after a flood-control reply, waiting the mandated delay.
func (s *Syncer) send(ctx context.Context, logger logging.Logger, msg Message) error {
	err := s.notifier.Send(ctx, msg)
	if err == nil {
		return nil
	}
	wait, ok := errors.RetryAfter(err)
	if !ok {
		return err
	}

	logger.Warn("Flood control, waiting before retry", logging.Duration("retry_after", wait))
	if err := s.sleep(ctx, wait); err != nil {
		return err
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("retry after flood control: %w", err)
	}
	return nil
}
