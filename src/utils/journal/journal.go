package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/logger"
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/utils/task"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Persists the progress of every credential, so a credential created but never issued can be found later
type Journal struct {
	db     *gorm.DB
	config *config.Journal
	log    *logrus.Entry
}

func NewJournal(db *gorm.DB, config *config.Journal) (self *Journal) {
	self = new(Journal)
	self.db = db
	self.config = config
	self.log = logger.NewSublogger("journal")
	return
}

func Open(ctx context.Context, config *config.Journal) (self *Journal, err error) {
	db, err := model.Connect(ctx, config)
	if err != nil {
		return
	}
	return NewJournal(db, config), nil
}

func (self *Journal) Close() error {
	db, err := self.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func isBusy(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "SQLITE_BUSY"))
}

func (self *Journal) write(ctx context.Context, f func(tx *gorm.DB) error) error {
	return task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.config.MaxElapsedTime).
		WithMaxInterval(self.config.MaxInterval).
		WithPermanent(func(err error) bool { return !isBusy(err) }).
		WithOnError(func(err error, next time.Duration) {
			self.log.WithError(err).WithField("next", next).Warn("Journal busy, retrying")
		}).
		Run(func() error {
			return f(self.db.WithContext(ctx))
		})
}

func (self *Journal) OnCreated(ctx context.Context, batchId, idempotencyKey, learnerId, credentialId string) error {
	entry := model.JournalEntry{
		IdempotencyKey: idempotencyKey,
		BatchId:        batchId,
		LearnerId:      learnerId,
		CredentialId:   credentialId,
		State:          model.JournalStateCreated,
	}
	return self.write(ctx, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
	})
}

func (self *Journal) OnIssued(ctx context.Context, idempotencyKey, transactionHash string) error {
	return self.update(ctx, idempotencyKey, map[string]interface{}{
		"state":            model.JournalStateIssued,
		"transaction_hash": transactionHash,
	})
}

func (self *Journal) OnOverlaid(ctx context.Context, idempotencyKey, certificateUrl string) error {
	return self.update(ctx, idempotencyKey, map[string]interface{}{
		"state":           model.JournalStateOverlaid,
		"certificate_url": certificateUrl,
	})
}

// Failures before the credential got created have no row yet, one is inserted
func (self *Journal) OnFailed(ctx context.Context, batchId, idempotencyKey, learnerId, step string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return self.write(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&model.JournalEntry{}).
			Where("idempotency_key = ?", idempotencyKey).
			Updates(map[string]interface{}{
				"state":       model.JournalStateFailed,
				"failed_step": step,
				"error":       message,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&model.JournalEntry{
			IdempotencyKey: idempotencyKey,
			BatchId:        batchId,
			LearnerId:      learnerId,
			State:          model.JournalStateFailed,
			FailedStep:     step,
			Error:          message,
		}).Error
	})
}

func (self *Journal) update(ctx context.Context, idempotencyKey string, values map[string]interface{}) error {
	return self.write(ctx, func(tx *gorm.DB) error {
		return tx.Model(&model.JournalEntry{}).
			Where("idempotency_key = ?", idempotencyKey).
			Updates(values).
			Error
	})
}

func (self *Journal) Get(ctx context.Context, idempotencyKey string) (out *model.JournalEntry, err error) {
	out = new(model.JournalEntry)
	err = self.db.WithContext(ctx).Where("idempotency_key = ?", idempotencyKey).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return
}

// Credentials that got created but never reached the overlay step
func (self *Journal) Unfinished(ctx context.Context) (out []model.JournalEntry, err error) {
	err = self.db.WithContext(ctx).
		Where("credential_id <> ''").
		Where("state IN ?", []model.JournalState{model.JournalStateCreated, model.JournalStateIssued, model.JournalStateFailed}).
		Order("created_at ASC").
		Find(&out).
		Error
	return
}
