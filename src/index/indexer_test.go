package index

import (
	"context"
	"testing"
	"time"

	"github.com/colabio/crowdfund/src/client"
	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/runtime"
	"github.com/colabio/crowdfund/src/utils/config"
	"github.com/colabio/crowdfund/src/utils/model"
	monitor_node "github.com/colabio/crowdfund/src/utils/monitoring/node"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func TestIndexerTestSuite(t *testing.T) {
	suite.Run(t, new(IndexerTestSuite))
}

type IndexerTestSuite struct {
	suite.Suite
	ctx     context.Context
	cancel  context.CancelFunc
	config  *config.Config
	monitor *monitor_node.Monitor
	db      *gorm.DB
	ledger  *ledger.AccountsDB
	bank    *ledger.Bank
	indexer *Indexer
	client  *client.Client
}

func (s *IndexerTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()
	s.config.Ledger.InMemory = true
	s.config.Database.Driver = model.DriverSqlite
	s.config.Database.Path = ":memory:"
	s.config.Indexer.BatchSize = 4
	s.config.Indexer.FlushInterval = 20 * time.Millisecond
}

func (s *IndexerTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *IndexerTestSuite) SetupTest() {
	var err error
	s.db, err = model.NewConnection(s.ctx, s.config, "test")
	s.Require().NoError(err)

	s.ledger, err = ledger.OpenAccountsDB(s.config)
	s.Require().NoError(err)

	programId := runtime.MustParsePubkey(s.config.Program.Id)
	s.monitor = monitor_node.NewMonitor()
	s.bank = ledger.NewBank(s.config).
		WithAccountsDB(s.ledger).
		WithClock(runtime.NewFixedClock(time.Unix(1_700_000_000, 0))).
		WithProgram(programId, program.NewProcessor()).
		WithOutputChannel(16)

	s.indexer = NewIndexer(s.config).
		WithDB(s.db).
		WithMonitor(s.monitor).
		WithInputChannel(s.bank.Output)

	s.Require().NoError(s.indexer.Start())
	s.Require().NoError(s.bank.Start())

	s.client = client.NewClient(programId)
}

func (s *IndexerTestSuite) TearDownTest() {
	s.bank.StopWait()
	s.indexer.StopWait()
	s.Require().NoError(s.ledger.Close())

	db, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(db.Close())
}

func (s *IndexerTestSuite) funded() *client.Keypair {
	keypair, err := client.NewKeypair()
	s.Require().NoError(err)
	_, err = s.bank.Airdrop(s.ctx, keypair.Pubkey, 1_000_000_000)
	s.Require().NoError(err)
	return keypair
}

func (s *IndexerTestSuite) fresh() *client.Keypair {
	keypair, err := client.NewKeypair()
	s.Require().NoError(err)
	return keypair
}

func (s *IndexerTestSuite) execute(tx *ledger.Transaction, err error) (*ledger.Receipt, error) {
	s.Require().NoError(err)
	return s.bank.Execute(s.ctx, tx)
}

func (s *IndexerTestSuite) waitForSlot(slot uint64) {
	require.Eventually(s.T(), func() bool {
		return s.monitor.GetReport().Indexer.State.LastIndexedSlot.Load() >= slot
	}, 5*time.Second, 10*time.Millisecond)
}

func (s *IndexerTestSuite) initialize(creator *client.Keypair) *client.Keypair {
	project := s.fresh()
	_, err := s.execute(s.client.InitializeProject(creator, project, program.InitializeProject{
		Title:       "Community garden",
		Description: "Raised beds",
		GoalAmount:  1000,
		Duration:    3600,
		Milestones: []program.Milestone{
			{Name: "soil", Amount: 300},
			{Name: "seeds", Amount: 200},
		},
	}))
	s.Require().NoError(err)
	return project
}

func (s *IndexerTestSuite) TestProjectsAndContributions() {
	creator := s.funded()
	project := s.initialize(creator)

	for i := 0; i < program.ActivationQuorum; i++ {
		_, err := s.execute(s.client.Vote(s.funded(), project.Pubkey, s.fresh(), true))
		s.Require().NoError(err)
	}

	contributor := s.funded()
	_, err := s.execute(s.client.Contribute(contributor, project.Pubkey, s.fresh(), 250))
	s.Require().NoError(err)
	receipt, err := s.execute(s.client.Contribute(contributor, project.Pubkey, s.fresh(), 50))
	s.Require().NoError(err)

	s.waitForSlot(receipt.Slot)

	query := NewQuery(s.db)
	projects, err := query.ProjectsByCreator(s.ctx, creator.Pubkey.String())
	require.NoError(s.T(), err)
	require.Len(s.T(), projects, 1)
	require.Equal(s.T(), project.Pubkey.String(), projects[0].Address)
	require.Equal(s.T(), "active", projects[0].Status)
	require.Equal(s.T(), uint64(300), projects[0].RaisedAmount)
	require.Equal(s.T(), uint32(program.ActivationQuorum), projects[0].ApproveVotes)
	require.Equal(s.T(), receipt.Slot, projects[0].Slot)
	require.Len(s.T(), projects[0].Milestones, 2)
	require.Equal(s.T(), "soil", projects[0].Milestones[0].Name)
	require.Equal(s.T(), uint64(200), projects[0].Milestones[1].Amount)

	contributions, err := query.ContributionsByContributor(s.ctx, contributor.Pubkey.String())
	require.NoError(s.T(), err)
	require.Len(s.T(), contributions, 2)
	require.Equal(s.T(), uint64(250), contributions[0].Amount)
	require.Equal(s.T(), uint64(50), contributions[1].Amount)
	require.Equal(s.T(), project.Pubkey.String(), contributions[1].Project)

	slot, err := query.LastIndexedSlot(s.ctx)
	require.NoError(s.T(), err)
	require.Equal(s.T(), receipt.Slot, slot)

	var votes int64
	require.NoError(s.T(), s.db.Model(&model.Vote{}).Count(&votes).Error)
	require.Equal(s.T(), int64(program.ActivationQuorum), votes)
}

func (s *IndexerTestSuite) TestFailedTransaction() {
	creator := s.funded()
	project := s.initialize(creator)

	// Pending project rejects contributions
	contributor := s.funded()
	receipt, err := s.execute(s.client.Contribute(contributor, project.Pubkey, s.fresh(), 10))
	require.ErrorIs(s.T(), err, program.ErrInvalidState)
	require.True(s.T(), receipt.Failed())

	require.Eventually(s.T(), func() bool {
		var count int64
		err := s.db.Model(&model.Transaction{}).Where("id = ?", receipt.Id).Count(&count).Error
		return err == nil && count == 1
	}, 5*time.Second, 10*time.Millisecond)

	transactions, err := NewQuery(s.db).TransactionsByProject(s.ctx, project.Pubkey.String(), 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), transactions, 2)

	var failed model.Transaction
	require.NoError(s.T(), s.db.Where("id = ?", receipt.Id).First(&failed).Error)
	require.Equal(s.T(), "contribute", failed.Instruction)
	require.Equal(s.T(), contributor.Pubkey.String(), failed.Signer)
	require.NotEmpty(s.T(), failed.Error)

	contributions, err := NewQuery(s.db).ContributionsByContributor(s.ctx, contributor.Pubkey.String())
	require.NoError(s.T(), err)
	require.Empty(s.T(), contributions)
}

func (s *IndexerTestSuite) TestRepeatedVoteIsCounted() {
	creator := s.funded()
	project := s.initialize(creator)

	voter := s.funded()
	_, err := s.execute(s.client.Vote(voter, project.Pubkey, s.fresh(), true))
	s.Require().NoError(err)
	receipt, err := s.execute(s.client.Vote(voter, project.Pubkey, s.fresh(), false))
	s.Require().NoError(err)

	s.waitForSlot(receipt.Slot)

	require.Equal(s.T(), uint64(1), s.monitor.GetReport().Indexer.State.DuplicateAttestations.Load())

	var votes []model.Vote
	require.NoError(s.T(), s.db.Where("voter = ?", voter.Pubkey.String()).Order("slot ASC").Find(&votes).Error)
	require.Len(s.T(), votes, 2)
	require.True(s.T(), votes[0].Approve)
	require.False(s.T(), votes[1].Approve)
}
