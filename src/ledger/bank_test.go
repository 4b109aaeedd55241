package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/colabio/crowdfund/src/runtime"
	"github.com/colabio/crowdfund/src/utils/config"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"
)

var errStub = errors.New("stub failure")

type programFunc func(inv *runtime.Invocation, accounts []*runtime.AccountInfo, data []byte) error

func (self programFunc) Process(inv *runtime.Invocation, accounts []*runtime.AccountInfo, data []byte) error {
	return self(inv, accounts, data)
}

func TestBankTestSuite(t *testing.T) {
	suite.Run(t, new(BankTestSuite))
}

type BankTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	config    *config.Config
	db        *AccountsDB
	bank      *Bank
	programId runtime.Pubkey
	keys      int
}

func (s *BankTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()
	s.config.Ledger.InMemory = true
	s.config.StopTimeout = 5 * time.Second
	s.programId = runtime.Pubkey{0xbb}
}

func (s *BankTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *BankTestSuite) SetupTest() {
	var err error
	s.db, err = OpenAccountsDB(s.config)
	s.Require().NoError(err)

	s.bank = NewBank(s.config).
		WithAccountsDB(s.db).
		WithClock(runtime.NewFixedClock(time.Unix(1_700_000_000, 0))).
		WithOutputChannel(100).
		WithProgram(s.programId, programFunc(transfer))
	s.Require().NoError(s.bank.Start())
}

func (s *BankTestSuite) TearDownTest() {
	s.bank.StopWait()
	s.Require().NoError(s.db.Close())
}

// Moves lamports between the first two accounts, fails when data says so
func transfer(inv *runtime.Invocation, accounts []*runtime.AccountInfo, data []byte) error {
	if len(accounts) < 2 || len(data) < 1 {
		return errStub
	}
	err := inv.Transfer(accounts[0], accounts[1], uint64(data[0]))
	if err != nil {
		return err
	}
	if len(data) > 1 {
		return errStub
	}
	return nil
}

func (s *BankTestSuite) keypair() (runtime.Pubkey, ed25519.PrivateKey) {
	s.keys++
	seed := sha256.Sum256([]byte{byte(s.keys), byte(s.keys >> 8), 0x42})
	private := ed25519.NewKeyFromSeed(seed[:])
	pubkey, err := runtime.PubkeyFromBytes(private.Public().(ed25519.PublicKey))
	s.Require().NoError(err)
	return pubkey, private
}

func (s *BankTestSuite) fund(key runtime.Pubkey, lamports uint64) {
	_, err := s.bank.Airdrop(s.ctx, key, lamports)
	s.Require().NoError(err)
}

func (s *BankTestSuite) balance(key runtime.Pubkey) uint64 {
	account, err := s.bank.Account(key)
	if errors.Is(err, ErrAccountNotFound) {
		return 0
	}
	s.Require().NoError(err)
	return account.Lamports
}

func (s *BankTestSuite) transferTx(from runtime.Pubkey, private ed25519.PrivateKey, to runtime.Pubkey, data ...byte) *Transaction {
	tx := NewTransaction(s.programId, []runtime.AccountMeta{
		runtime.NewAccountMeta(from, true, true),
		runtime.NewAccountMeta(to, false, true),
	}, data)
	s.Require().NoError(tx.Sign(private))
	return tx
}

func (s *BankTestSuite) TestExecute() {
	from, private := s.keypair()
	to, _ := s.keypair()
	s.fund(from, 1000)

	receipt, err := s.bank.Execute(s.ctx, s.transferTx(from, private, to, 100))
	require.NoError(s.T(), err)
	require.False(s.T(), receipt.Failed())
	require.NotEmpty(s.T(), receipt.Id)
	require.Equal(s.T(), uint64(1), receipt.Slot)
	require.Equal(s.T(), int64(1_700_000_000), receipt.Timestamp)
	require.Len(s.T(), receipt.PostAccounts, 2)

	post, ok := receipt.PostState(to)
	require.True(s.T(), ok)
	require.Equal(s.T(), uint64(100), post.Lamports)

	require.Equal(s.T(), uint64(900), s.balance(from))
	require.Equal(s.T(), uint64(100), s.balance(to))

	slot, err := s.db.Slot()
	require.NoError(s.T(), err)
	require.Equal(s.T(), uint64(1), slot)
	require.Equal(s.T(), uint64(1), s.bank.Slot())

	out := <-s.bank.Output
	require.Equal(s.T(), receipt.Id, out.Id)
}

func (s *BankTestSuite) TestFailureIsAtomic() {
	from, private := s.keypair()
	to, _ := s.keypair()
	s.fund(from, 1000)

	// Transfer happens, then the program fails
	receipt, err := s.bank.Execute(s.ctx, s.transferTx(from, private, to, 100, 1))
	require.ErrorIs(s.T(), err, errStub)
	require.NotNil(s.T(), receipt)
	require.True(s.T(), receipt.Failed())
	require.Equal(s.T(), errStub.Error(), receipt.Error)
	require.Empty(s.T(), receipt.PostAccounts)
	require.Equal(s.T(), uint64(0), receipt.Slot)

	require.Equal(s.T(), uint64(1000), s.balance(from))
	require.Equal(s.T(), uint64(0), s.balance(to))
	require.Equal(s.T(), uint64(0), s.bank.Slot())
}

func (s *BankTestSuite) TestReplayRejected() {
	from, private := s.keypair()
	to, _ := s.keypair()
	s.fund(from, 1000)

	tx := s.transferTx(from, private, to, 100)
	_, err := s.bank.Execute(s.ctx, tx)
	require.NoError(s.T(), err)
	<-s.bank.Output

	for i := 0; i < 3; i++ {
		receipt, err := s.bank.Execute(s.ctx, tx)
		require.ErrorIs(s.T(), err, ErrDuplicateTransaction)
		require.Nil(s.T(), receipt)
	}

	// Signing the same message again doesn't make it a new transaction
	require.NoError(s.T(), tx.Sign(private))
	_, err = s.bank.Execute(s.ctx, tx)
	require.ErrorIs(s.T(), err, ErrDuplicateTransaction)

	require.Equal(s.T(), uint64(900), s.balance(from))
	require.Equal(s.T(), uint64(100), s.balance(to))
	require.Equal(s.T(), uint64(1), s.bank.Slot())

	// A new nonce is a new transaction
	tx = NewTransaction(s.programId, tx.Accounts, tx.Data).WithNonce(1)
	require.NoError(s.T(), tx.Sign(private))
	_, err = s.bank.Execute(s.ctx, tx)
	require.NoError(s.T(), err)
	<-s.bank.Output
	require.Equal(s.T(), uint64(800), s.balance(from))
}

func (s *BankTestSuite) TestFailedTransactionIsNotReplayed() {
	from, private := s.keypair()
	to, _ := s.keypair()

	tx := s.transferTx(from, private, to, 100)
	receipt, err := s.bank.Execute(s.ctx, tx)
	require.ErrorIs(s.T(), err, runtime.ErrInsufficientFunds)
	require.True(s.T(), receipt.Failed())
	<-s.bank.Output

	// Would succeed now, but it already failed once
	s.fund(from, 1000)
	_, err = s.bank.Execute(s.ctx, tx)
	require.ErrorIs(s.T(), err, ErrDuplicateTransaction)
	require.Equal(s.T(), uint64(1000), s.balance(from))
	require.Equal(s.T(), uint64(0), s.bank.Slot())
}

func (s *BankTestSuite) TestConcurrentReplay() {
	from, private := s.keypair()
	to, _ := s.keypair()
	s.fund(from, 1000)
	tx := s.transferTx(from, private, to, 1)

	const copies = 10
	var (
		wg       sync.WaitGroup
		executed atomic.Int32
		rejected atomic.Int32
	)
	for i := 0; i < copies; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.bank.Execute(s.ctx, tx)
			switch {
			case err == nil:
				executed.Inc()
			case errors.Is(err, ErrDuplicateTransaction):
				rejected.Inc()
			}
		}()
	}
	wg.Wait()
	<-s.bank.Output

	require.Equal(s.T(), int32(1), executed.Load())
	require.Equal(s.T(), int32(copies-1), rejected.Load())
	require.Equal(s.T(), uint64(1), s.balance(to))
}

func (s *BankTestSuite) TestInsufficientFunds() {
	from, private := s.keypair()
	to, _ := s.keypair()
	s.fund(from, 10)

	_, err := s.bank.Execute(s.ctx, s.transferTx(from, private, to, 11))
	require.ErrorIs(s.T(), err, runtime.ErrInsufficientFunds)
	require.Equal(s.T(), uint64(10), s.balance(from))
}

func (s *BankTestSuite) TestSignatures() {
	from, private := s.keypair()
	to, otherPrivate := s.keypair()
	s.fund(from, 1000)

	tx := NewTransaction(s.programId, []runtime.AccountMeta{
		runtime.NewAccountMeta(from, true, true),
		runtime.NewAccountMeta(to, false, true),
	}, []byte{1})

	_, err := s.bank.Execute(s.ctx, tx)
	require.ErrorIs(s.T(), err, ErrSignatureMissing)

	require.ErrorIs(s.T(), tx.Sign(otherPrivate), ErrUnexpectedSigner)

	require.NoError(s.T(), tx.Sign(private))
	tx.Data = []byte{2}
	receipt, err := s.bank.Execute(s.ctx, tx)
	require.ErrorIs(s.T(), err, ErrInvalidSignature)
	require.Nil(s.T(), receipt)

	// Signing again replaces the signature
	require.NoError(s.T(), tx.Sign(private))
	require.Len(s.T(), tx.Signatures, 1)
	_, err = s.bank.Execute(s.ctx, tx)
	require.NoError(s.T(), err)
}

func (s *BankTestSuite) TestUnknownProgram() {
	from, private := s.keypair()
	tx := NewTransaction(runtime.Pubkey{0x01}, []runtime.AccountMeta{runtime.NewAccountMeta(from, true, true)}, nil)
	s.Require().NoError(tx.Sign(private))

	_, err := s.bank.Execute(s.ctx, tx)
	require.ErrorIs(s.T(), err, ErrUnknownProgram)
}

func (s *BankTestSuite) TestProgramMisbehaves() {
	from, private := s.keypair()
	to, _ := s.keypair()
	s.fund(from, 1000)
	s.fund(to, 1000)

	cases := []struct {
		program  programFunc
		expected error
	}{
		{
			program: func(inv *runtime.Invocation, accounts []*runtime.AccountInfo, data []byte) error {
				accounts[1].Lamports += 5
				return nil
			},
			expected: ErrUnbalanced,
		},
		{
			program: func(inv *runtime.Invocation, accounts []*runtime.AccountInfo, data []byte) error {
				accounts[1].Lamports -= 5
				accounts[0].Lamports += 5
				return nil
			},
			expected: ErrExternalDebit,
		},
		{
			program: func(inv *runtime.Invocation, accounts []*runtime.AccountInfo, data []byte) error {
				panic("boom")
			},
			expected: ErrProgramPanicked,
		},
	}

	for i, c := range cases {
		programId := runtime.Pubkey{0xcc, byte(i)}
		s.bank.WithProgram(programId, c.program)

		tx := NewTransaction(programId, []runtime.AccountMeta{
			runtime.NewAccountMeta(from, true, true),
			runtime.NewAccountMeta(to, false, true),
		}, nil)
		s.Require().NoError(tx.Sign(private))

		_, err := s.bank.Execute(s.ctx, tx)
		require.ErrorIs(s.T(), err, c.expected, "case %d", i)
	}

	require.Equal(s.T(), uint64(1000), s.balance(from))
	require.Equal(s.T(), uint64(1000), s.balance(to))
}

func (s *BankTestSuite) TestReadonlyModified() {
	programId := runtime.Pubkey{0xdd}
	s.bank.WithProgram(programId, programFunc(func(inv *runtime.Invocation, accounts []*runtime.AccountInfo, data []byte) error {
		accounts[0].Lamports -= 1
		accounts[1].Lamports += 1
		return nil
	}))

	from, private := s.keypair()
	to, _ := s.keypair()
	s.fund(from, 1000)

	tx := NewTransaction(programId, []runtime.AccountMeta{
		runtime.NewAccountMeta(from, true, false),
		runtime.NewAccountMeta(to, false, true),
	}, nil)
	s.Require().NoError(tx.Sign(private))

	_, err := s.bank.Execute(s.ctx, tx)
	require.ErrorIs(s.T(), err, ErrReadonlyModified)
}

func (s *BankTestSuite) TestDuplicateAccountsShareState() {
	programId := runtime.Pubkey{0xde}
	s.bank.WithProgram(programId, programFunc(func(inv *runtime.Invocation, accounts []*runtime.AccountInfo, data []byte) error {
		if accounts[0] != accounts[1] {
			return errStub
		}
		if !accounts[0].IsSigner || !accounts[0].IsWritable {
			return errStub
		}
		return nil
	}))

	from, private := s.keypair()
	s.fund(from, 1000)

	tx := NewTransaction(programId, []runtime.AccountMeta{
		runtime.NewAccountMeta(from, true, false),
		runtime.NewAccountMeta(from, false, true),
	}, nil)
	s.Require().NoError(tx.Sign(private))

	receipt, err := s.bank.Execute(s.ctx, tx)
	require.NoError(s.T(), err)
	require.Len(s.T(), receipt.PostAccounts, 1)
}

func (s *BankTestSuite) TestConcurrentWriters() {
	to, _ := s.keypair()

	const writers = 20
	txs := make([]*Transaction, writers)
	for i := range txs {
		from, private := s.keypair()
		s.fund(from, 10)
		txs[i] = s.transferTx(from, private, to, 1)
	}

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for _, tx := range txs {
		wg.Add(1)
		go func(tx *Transaction) {
			defer wg.Done()
			_, err := s.bank.Execute(s.ctx, tx)
			errs <- err
		}(tx)
	}

	// Drain receipts so executions never block on the output
	done := make(chan struct{})
	go func() {
		for i := 0; i < writers; i++ {
			<-s.bank.Output
		}
		close(done)
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(s.T(), err)
	}
	<-done

	require.Equal(s.T(), uint64(writers), s.balance(to))
	require.Equal(s.T(), uint64(writers), s.bank.Slot())
}

func (s *BankTestSuite) TestAirdrop() {
	key, _ := s.keypair()

	_, err := s.bank.Account(key)
	require.ErrorIs(s.T(), err, ErrAccountNotFound)

	balance, err := s.bank.Airdrop(s.ctx, key, 5)
	require.NoError(s.T(), err)
	require.Equal(s.T(), uint64(5), balance)

	balance, err = s.bank.Airdrop(s.ctx, key, 7)
	require.NoError(s.T(), err)
	require.Equal(s.T(), uint64(12), balance)

	_, err = s.bank.Airdrop(s.ctx, key, ^uint64(0))
	require.ErrorIs(s.T(), err, ErrLamportsOverflow)

	account, err := s.bank.Account(key)
	require.NoError(s.T(), err)
	require.Equal(s.T(), runtime.SystemProgramId, account.Owner)
	require.Equal(s.T(), uint64(12), account.Lamports)
}

func (s *BankTestSuite) TestStopped() {
	s.bank.StopWait()

	from, private := s.keypair()
	_, err := s.bank.Execute(s.ctx, s.transferTx(from, private, runtime.Pubkey{1}, 1))
	require.ErrorIs(s.T(), err, ErrBankStopped)

	_, ok := <-s.bank.Output
	require.False(s.T(), ok)
}
