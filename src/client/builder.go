package client

import (
	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/runtime"
)

// Builds signed crowdfunding transactions, accounts in the order the program expects
type Client struct {
	ProgramId runtime.Pubkey
	nonce     func() uint64
}

func NewClient(programId runtime.Pubkey) (self *Client) {
	self = new(Client)
	self.ProgramId = programId
	self.nonce = randomNonce
	return
}

func (self *Client) WithNonce(f func() uint64) *Client {
	self.nonce = f
	return self
}

// Project keypair has to sign, the account gets allocated
func (self *Client) InitializeProject(creator, project *Keypair, ix program.InitializeProject) (*ledger.Transaction, error) {
	return self.build(ix, []runtime.AccountMeta{
		creator.Meta(true),
		project.Meta(true),
		runtime.NewAccountMeta(runtime.SysvarRentId, false, false),
		runtime.NewAccountMeta(runtime.SystemProgramId, false, false),
	}, creator, project)
}

// Record keypair always signs. A new record is allocated, which needs its signature,
// an existing one is overwritten and the signature goes unused.
func (self *Client) Contribute(contributor *Keypair, project runtime.Pubkey, record *Keypair, amount uint64) (*ledger.Transaction, error) {
	return self.build(program.Contribute{Amount: amount}, []runtime.AccountMeta{
		contributor.Meta(true),
		runtime.NewAccountMeta(project, false, true),
		record.Meta(true),
		runtime.NewAccountMeta(runtime.SystemProgramId, false, false),
	}, contributor, record)
}

func (self *Client) ValidateMilestone(validator *Keypair, project runtime.Pubkey, record *Keypair, index uint8) (*ledger.Transaction, error) {
	return self.build(program.ValidateMilestone{MilestoneIndex: index}, []runtime.AccountMeta{
		validator.Meta(true),
		runtime.NewAccountMeta(project, false, true),
		record.Meta(true),
		runtime.NewAccountMeta(runtime.SystemProgramId, false, false),
	}, validator, record)
}

// Creator receives the payout, so it's writable
func (self *Client) ReleaseFunds(creator *Keypair, project runtime.Pubkey, index uint8) (*ledger.Transaction, error) {
	return self.build(program.ReleaseFunds{MilestoneIndex: index}, []runtime.AccountMeta{
		creator.Meta(true),
		runtime.NewAccountMeta(project, false, true),
		runtime.NewAccountMeta(runtime.SystemProgramId, false, false),
	}, creator)
}

func (self *Client) CancelProject(creator *Keypair, project runtime.Pubkey) (*ledger.Transaction, error) {
	return self.build(program.CancelProject{}, []runtime.AccountMeta{
		creator.Meta(true),
		runtime.NewAccountMeta(project, false, true),
		runtime.NewAccountMeta(runtime.SystemProgramId, false, false),
	}, creator)
}

func (self *Client) Vote(voter *Keypair, project runtime.Pubkey, record *Keypair, approve bool) (*ledger.Transaction, error) {
	return self.build(program.Vote{Approve: approve}, []runtime.AccountMeta{
		voter.Meta(true),
		runtime.NewAccountMeta(project, false, true),
		record.Meta(true),
		runtime.NewAccountMeta(runtime.SystemProgramId, false, false),
	}, voter, record)
}

func (self *Client) build(ix program.Instruction, accounts []runtime.AccountMeta, signers ...*Keypair) (tx *ledger.Transaction, err error) {
	data, err := program.Pack(ix)
	if err != nil {
		return
	}

	tx = ledger.NewTransaction(self.ProgramId, accounts, data).WithNonce(self.nonce())
	for _, signer := range signers {
		err = signer.Sign(tx)
		if err != nil {
			return nil, err
		}
	}
	return
}
