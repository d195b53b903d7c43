package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/model"

	"github.com/stretchr/testify/suite"
)

func TestJournalTestSuite(t *testing.T) {
	suite.Run(t, new(JournalTestSuite))
}

type JournalTestSuite struct {
	suite.Suite
	ctx     context.Context
	cancel  context.CancelFunc
	journal *Journal
}

func (s *JournalTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 10*time.Second)

	var err error
	s.journal, err = Open(s.ctx, &config.Journal{
		Enabled:        true,
		Path:           filepath.Join(s.T().TempDir(), "journal.db"),
		MaxElapsedTime: time.Second,
		MaxInterval:    100 * time.Millisecond,
	})
	s.Require().NoError(err)
}

func (s *JournalTestSuite) TearDownTest() {
	s.Require().NoError(s.journal.Close())
	s.cancel()
}

func (s *JournalTestSuite) TestLifecycle() {
	s.Require().NoError(s.journal.OnCreated(s.ctx, "batch-1", "key-1", "jon@example.com", "cred-1"))

	entry, err := s.journal.Get(s.ctx, "key-1")
	s.Require().NoError(err)
	s.Require().NotNil(entry)
	s.Require().Equal(model.JournalStateCreated, entry.State)
	s.Require().Equal("cred-1", entry.CredentialId)
	s.Require().Equal("batch-1", entry.BatchId)

	s.Require().NoError(s.journal.OnIssued(s.ctx, "key-1", "0xtx"))
	entry, err = s.journal.Get(s.ctx, "key-1")
	s.Require().NoError(err)
	s.Require().Equal(model.JournalStateIssued, entry.State)
	s.Require().Equal("0xtx", entry.TransactionHash)

	s.Require().NoError(s.journal.OnOverlaid(s.ctx, "key-1", "https://files.example.com/cred-1.pdf"))
	entry, err = s.journal.Get(s.ctx, "key-1")
	s.Require().NoError(err)
	s.Require().Equal(model.JournalStateOverlaid, entry.State)
	s.Require().Equal("https://files.example.com/cred-1.pdf", entry.CertificateUrl)

	unfinished, err := s.journal.Unfinished(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(unfinished)
}

func (s *JournalTestSuite) TestFailureAfterCreate() {
	s.Require().NoError(s.journal.OnCreated(s.ctx, "", "key-1", "jon@example.com", "cred-1"))
	s.Require().NoError(s.journal.OnFailed(s.ctx, "", "key-1", "jon@example.com", "issue", errors.New("chain down")))

	entry, err := s.journal.Get(s.ctx, "key-1")
	s.Require().NoError(err)
	s.Require().Equal(model.JournalStateFailed, entry.State)
	s.Require().Equal("issue", entry.FailedStep)
	s.Require().Equal("chain down", entry.Error)
	s.Require().Equal("cred-1", entry.CredentialId)

	unfinished, err := s.journal.Unfinished(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(unfinished, 1)
	s.Require().Equal("key-1", unfinished[0].IdempotencyKey)
}

func (s *JournalTestSuite) TestFailureBeforeCreate() {
	s.Require().NoError(s.journal.OnFailed(s.ctx, "batch-1", "key-2", "jon@example.com", "create", errors.New("bad request")))

	entry, err := s.journal.Get(s.ctx, "key-2")
	s.Require().NoError(err)
	s.Require().Equal(model.JournalStateFailed, entry.State)
	s.Require().Empty(entry.CredentialId)

	// Nothing exists on the backend
	unfinished, err := s.journal.Unfinished(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(unfinished)
}

func (s *JournalTestSuite) TestMissingEntry() {
	entry, err := s.journal.Get(s.ctx, "unknown")
	s.Require().NoError(err)
	s.Require().Nil(entry)
}
