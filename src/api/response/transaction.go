package response

import "github.com/colabio/crowdfund/src/ledger"

type SendTransaction struct {
	*ledger.Receipt

	// Set when the program rejected the transaction
	Code string `json:"code,omitempty"`
}

type Airdrop struct {
	Lamports uint64 `json:"lamports"`
}
