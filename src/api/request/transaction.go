package request

import "github.com/colabio/crowdfund/src/ledger"

// Keys are base58, data and signatures are base64
type SendTransaction struct {
	ledger.Transaction
}

type Airdrop struct {
	Address  string `json:"address" binding:"required"`
	Lamports uint64 `json:"lamports" binding:"required,gt=0"`
}
