package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"time"

	"github.com/colabio/crowdfund/src/runtime"
	"github.com/colabio/crowdfund/src/utils/config"
	"github.com/colabio/crowdfund/src/utils/monitoring"
	"github.com/colabio/crowdfund/src/utils/task"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/xid"
	"go.uber.org/atomic"
)

const maxConflictRetries = 5

// Executes transactions against the accounts database. Each transaction is applied
// in full or not at all. Writers of the same account are serialized.
type Bank struct {
	*task.Task

	db       *AccountsDB
	programs map[runtime.Pubkey]runtime.Program
	clock    runtime.Clock
	rent     runtime.Rent
	monitor  monitoring.Monitor

	locks     keyLocks
	commitMtx sync.Mutex
	slot      atomic.Uint64

	// Called after each executed transaction
	onReceipt []func(*Receipt)

	// Receipts of executed transactions, nil if nobody listens
	Output    chan *Receipt
	outputMtx sync.RWMutex
	closed    bool
}

func NewBank(config *config.Config) (self *Bank) {
	self = new(Bank)
	self.programs = make(map[runtime.Pubkey]runtime.Program)
	self.clock = runtime.SystemClock{}
	self.rent = runtime.Rent{
		LamportsPerByteYear: config.Ledger.LamportsPerByteYear,
		ExemptionThreshold:  config.Ledger.ExemptionThreshold,
	}

	self.Task = task.NewTask(config, "bank").
		WithOnBeforeStart(self.loadSlot).
		WithSubtaskFunc(func() error {
			<-self.StopChannel
			return nil
		}).
		WithOnAfterStop(self.closeOutput)

	return
}

func (self *Bank) WithAccountsDB(db *AccountsDB) *Bank {
	self.db = db
	return self
}

func (self *Bank) WithProgram(programId runtime.Pubkey, program runtime.Program) *Bank {
	self.programs[programId] = program
	return self
}

func (self *Bank) WithClock(clock runtime.Clock) *Bank {
	self.clock = clock
	return self
}

func (self *Bank) WithMonitor(monitor monitoring.Monitor) *Bank {
	self.monitor = monitor
	return self
}

func (self *Bank) WithOutputChannel(bufferSize int) *Bank {
	self.Output = make(chan *Receipt, bufferSize)
	return self
}

func (self *Bank) WithOnReceipt(f func(*Receipt)) *Bank {
	self.onReceipt = append(self.onReceipt, f)
	return self
}

func (self *Bank) Rent() runtime.Rent {
	return self.rent
}

func (self *Bank) Slot() uint64 {
	return self.slot.Load()
}

func (self *Bank) Account(key runtime.Pubkey) (*Account, error) {
	return self.db.Get(key)
}

func (self *Bank) loadSlot() (err error) {
	slot, err := self.db.Slot()
	if err != nil {
		return
	}
	self.slot.Store(slot)
	self.Log.WithField("slot", slot).Info("Bank started")
	return
}

func (self *Bank) closeOutput() {
	self.outputMtx.Lock()
	defer self.outputMtx.Unlock()

	self.closed = true
	if self.Output != nil {
		close(self.Output)
	}
}

// Verifies, executes and commits the transaction. Returns a receipt whenever the
// program ran, including when it failed. Failed transactions don't change any account.
func (self *Bank) Execute(ctx context.Context, tx *Transaction) (receipt *Receipt, err error) {
	self.outputMtx.RLock()
	defer self.outputMtx.RUnlock()
	if self.closed || self.IsStopping.Load() {
		err = ErrBankStopped
		return
	}

	err = tx.Verify()
	if err != nil {
		self.report(func(m monitoring.Monitor) { m.GetReport().Bank.Errors.SignatureVerification.Inc() })
		return
	}

	hash, err := tx.Hash()
	if err != nil {
		return
	}

	program, ok := self.programs[tx.ProgramId]
	if !ok {
		err = fmt.Errorf("%w: %s", ErrUnknownProgram, tx.ProgramId)
		return
	}

	unlock := self.locks.lock(writableKeys(tx))
	defer unlock()

	for attempt := 0; ; attempt++ {
		err = ctx.Err()
		if err != nil {
			return
		}

		receipt, err = self.execute(program, tx, hash)
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			break
		}
		self.report(func(m monitoring.Monitor) { m.GetReport().Bank.Errors.Conflicts.Inc() })
		self.Log.WithField("attempt", attempt).Debug("Conflict, retrying")
	}
	if errors.Is(err, ErrDuplicateTransaction) {
		self.report(func(m monitoring.Monitor) { m.GetReport().Bank.Errors.DuplicateTransactions.Inc() })
		self.Log.WithField("hash", fmt.Sprintf("%x", hash)).Debug("Transaction replayed, rejected")
		return
	}
	if receipt == nil {
		self.report(func(m monitoring.Monitor) { m.GetReport().Bank.Errors.Storage.Inc() })
		self.Log.WithError(err).Error("Failed to commit transaction")
		return
	}

	log := self.Log.WithField("id", receipt.Id).WithField("slot", receipt.Slot)
	if receipt.Failed() {
		self.report(func(m monitoring.Monitor) { m.GetReport().Bank.State.TransactionsFailed.Inc() })
		log.WithError(receipt.Err).Debug("Transaction failed")
	} else {
		self.report(func(m monitoring.Monitor) {
			m.GetReport().Bank.State.TransactionsExecuted.Inc()
			m.GetReport().Bank.State.CurrentSlot.Store(receipt.Slot)
		})
		log.Debug("Transaction committed")
	}

	for _, f := range self.onReceipt {
		f(receipt)
	}

	if self.Output != nil {
		select {
		case <-self.Ctx.Done():
		case self.Output <- receipt:
		}
	}

	return receipt, receipt.Err
}

// Runs the program on a private copy of the accounts. Storage errors and replays are
// returned without a receipt, program errors come back in the receipt. Either way the
// transaction hash is committed, so the same transaction never runs twice.
func (self *Bank) execute(program runtime.Program, tx *Transaction, hash [32]byte) (receipt *Receipt, err error) {
	txn := self.db.begin()
	defer txn.discard()

	processed, err := txn.isProcessed(hash)
	if err != nil {
		return
	}
	if processed {
		err = ErrDuplicateTransaction
		return
	}

	infos, unique, err := self.load(txn, tx)
	if err != nil {
		return
	}

	receipt = &Receipt{
		Id:        xid.New().String(),
		Slot:      self.slot.Load(),
		Timestamp: self.clock.Now().Unix(),
		ProgramId: tx.ProgramId,
		Accounts:  tx.Accounts,
		Data:      tx.Data,
	}

	pre := make([]*Account, len(unique))
	for i, info := range unique {
		pre[i] = accountFromInfo(info)
	}

	inv := runtime.NewInvocation(tx.ProgramId, self.clock, self.rent)
	receipt.Err = self.invoke(program, inv, infos, tx.Data)
	if receipt.Err == nil {
		receipt.Err = verifyChanges(tx.ProgramId, pre, unique)
	}
	if receipt.Err != nil {
		receipt.Error = receipt.Err.Error()

		// Only the hash is persisted
		err = txn.setProcessed(hash, receipt.Slot)
		if err != nil {
			return nil, err
		}
		err = txn.commit()
		if err != nil {
			return nil, err
		}
		return receipt, nil
	}

	for _, info := range unique {
		if !info.IsWritable {
			continue
		}
		account := accountFromInfo(info)
		err = txn.put(info.Key, account)
		if err != nil {
			return nil, err
		}
		receipt.PostAccounts = append(receipt.PostAccounts, AccountState{Key: info.Key, Account: *account})
	}

	self.commitMtx.Lock()
	defer self.commitMtx.Unlock()

	slot := self.slot.Load() + 1
	err = txn.setSlot(slot)
	if err != nil {
		return nil, err
	}
	err = txn.setProcessed(hash, slot)
	if err != nil {
		return nil, err
	}
	err = txn.commit()
	if err != nil {
		return nil, err
	}
	self.slot.Store(slot)
	receipt.Slot = slot
	return
}

func (self *Bank) invoke(program runtime.Program, inv *runtime.Invocation, infos []*runtime.AccountInfo, data []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			self.Log.WithField("panic", p).Error("Program panicked")
			err = fmt.Errorf("%w: %v", ErrProgramPanicked, p)
		}
	}()
	return program.Process(inv, infos, data)
}

// Loads accounts in transaction order. An account listed more than once is passed
// as the same object, signer and writable flags are merged.
func (self *Bank) load(txn *accountsTxn, tx *Transaction) (infos, unique []*runtime.AccountInfo, err error) {
	byKey := make(map[runtime.Pubkey]*runtime.AccountInfo, len(tx.Accounts))
	for _, meta := range tx.Accounts {
		if info, ok := byKey[meta.Pubkey]; ok {
			info.IsSigner = info.IsSigner || meta.IsSigner
			info.IsWritable = info.IsWritable || meta.IsWritable
			infos = append(infos, info)
			continue
		}

		var account *Account
		account, err = txn.get(meta.Pubkey)
		if err != nil {
			return
		}

		info := account.Info(meta.Pubkey, meta.IsSigner, meta.IsWritable)
		byKey[meta.Pubkey] = info
		infos = append(infos, info)
		unique = append(unique, info)
	}
	return
}

// Checks the program respected account ownership and moved lamports without minting any
func verifyChanges(programId runtime.Pubkey, pre []*Account, post []*runtime.AccountInfo) error {
	var before, after, carry uint64
	for i, info := range post {
		old := pre[i]

		dataChanged := !bytes.Equal(old.Data, info.Data)
		ownerChanged := old.Owner != info.Owner
		if (dataChanged || ownerChanged || old.Lamports != info.Lamports) && !info.IsWritable {
			return fmt.Errorf("%w: %s", ErrReadonlyModified, info.Key)
		}

		// Only unallocated system accounts may be handed over to the program
		unallocated := old.Owner == runtime.SystemProgramId && len(old.Data) == 0
		if (dataChanged || ownerChanged) && old.Owner != programId && !unallocated {
			return fmt.Errorf("%w: %s", ErrForeignDataChange, info.Key)
		}

		// Debits need the owner, or the signature of a system account
		if info.Lamports < old.Lamports && old.Owner != programId && !(old.Owner == runtime.SystemProgramId && info.IsSigner) {
			return fmt.Errorf("%w: %s", ErrExternalDebit, info.Key)
		}

		before, carry = bits.Add64(before, old.Lamports, 0)
		if carry != 0 {
			return ErrLamportsOverflow
		}
		after, carry = bits.Add64(after, info.Lamports, 0)
		if carry != 0 {
			return ErrLamportsOverflow
		}
	}
	if before != after {
		return ErrUnbalanced
	}
	return nil
}

// Funds an account out of thin air. Development and tests only.
func (self *Bank) Airdrop(ctx context.Context, key runtime.Pubkey, lamports uint64) (balance uint64, err error) {
	unlock := self.locks.lock([]runtime.Pubkey{key})
	defer unlock()

	for attempt := 0; ; attempt++ {
		err = ctx.Err()
		if err != nil {
			return
		}

		balance, err = self.airdrop(key, lamports)
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			break
		}
	}
	if err != nil {
		return
	}

	self.Log.WithField("key", key).WithField("lamports", lamports).Info("Airdrop")
	return
}

func (self *Bank) airdrop(key runtime.Pubkey, lamports uint64) (balance uint64, err error) {
	txn := self.db.begin()
	defer txn.discard()

	account, err := txn.get(key)
	if err != nil {
		return
	}

	balance, carry := bits.Add64(account.Lamports, lamports, 0)
	if carry != 0 {
		err = ErrLamportsOverflow
		return
	}
	account.Lamports = balance

	err = txn.put(key, account)
	if err != nil {
		return
	}
	err = txn.commit()
	return
}

func (self *Bank) report(f func(m monitoring.Monitor)) {
	if self.monitor != nil {
		f(self.monitor)
	}
}

func writableKeys(tx *Transaction) (out []runtime.Pubkey) {
	for _, meta := range tx.Accounts {
		if meta.IsWritable {
			out = append(out, meta.Pubkey)
		}
	}
	return
}

// Time of the bank's clock
func (self *Bank) Now() time.Time {
	return self.clock.Now()
}
