package ledger

import (
	"encoding/binary"
	"errors"

	"github.com/colabio/crowdfund/src/runtime"
	"github.com/colabio/crowdfund/src/utils/config"
	"github.com/colabio/crowdfund/src/utils/logger"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

var (
	accountPrefix     = []byte("account/")
	transactionPrefix = []byte("tx/")
	slotKey           = []byte("meta/slot")
)

// Account storage
type AccountsDB struct {
	log *logrus.Entry
	db  *badger.DB
}

func OpenAccountsDB(config *config.Config) (self *AccountsDB, err error) {
	self = new(AccountsDB)
	self.log = logger.NewSublogger("accounts-db")

	opts := badger.DefaultOptions(config.Ledger.Path).
		WithInMemory(config.Ledger.InMemory).
		WithSyncWrites(config.Ledger.SyncWrites).
		WithLogger(logger.NewSublogger("badger"))
	if config.Ledger.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	self.db, err = badger.Open(opts)
	if err != nil {
		return
	}

	self.log.WithField("path", config.Ledger.Path).WithField("in_memory", config.Ledger.InMemory).Info("Accounts database opened")
	return
}

func (self *AccountsDB) Close() error {
	return self.db.Close()
}

func (self *AccountsDB) Get(key runtime.Pubkey) (out *Account, err error) {
	err = self.db.View(func(txn *badger.Txn) error {
		out, err = (&accountsTxn{txn: txn}).get(key)
		return err
	})
	if err != nil {
		return
	}
	if out.IsEmpty() {
		return nil, ErrAccountNotFound
	}
	return
}

// Number of the last committed slot
func (self *AccountsDB) Slot() (slot uint64, err error) {
	err = self.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slotKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			slot = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	return
}

func (self *AccountsDB) begin() *accountsTxn {
	return &accountsTxn{txn: self.db.NewTransaction(true)}
}

// Read-write view of the accounts. Nothing is visible to others before commit.
type accountsTxn struct {
	txn *badger.Txn
}

func accountKey(key runtime.Pubkey) []byte {
	return append(append(make([]byte, 0, len(accountPrefix)+runtime.PUBKEY_LENGTH), accountPrefix...), key[:]...)
}

// Missing accounts are empty and owned by the system program
func (self *accountsTxn) get(key runtime.Pubkey) (out *Account, err error) {
	out = &Account{Owner: runtime.SystemProgramId}

	item, err := self.txn.Get(accountKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return out, nil
	}
	if err != nil {
		return
	}

	err = item.Value(out.Unmarshal)
	return
}

func (self *accountsTxn) put(key runtime.Pubkey, account *Account) (err error) {
	if account.IsEmpty() {
		return self.txn.Delete(accountKey(key))
	}

	buf, err := account.Marshal()
	if err != nil {
		return
	}
	return self.txn.Set(accountKey(key), buf)
}

func transactionKey(hash [32]byte) []byte {
	return append(append(make([]byte, 0, len(transactionPrefix)+len(hash)), transactionPrefix...), hash[:]...)
}

// Whether a transaction with this hash was already executed, successfully or not
func (self *accountsTxn) isProcessed(hash [32]byte) (bool, error) {
	_, err := self.txn.Get(transactionKey(hash))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Value is the slot the transaction was executed in
func (self *accountsTxn) setProcessed(hash [32]byte, slot uint64) error {
	return self.txn.Set(transactionKey(hash), binary.BigEndian.AppendUint64(nil, slot))
}

func (self *accountsTxn) setSlot(slot uint64) error {
	return self.txn.Set(slotKey, binary.BigEndian.AppendUint64(nil, slot))
}

func (self *accountsTxn) commit() error {
	return self.txn.Commit()
}

func (self *accountsTxn) discard() {
	self.txn.Discard()
}
