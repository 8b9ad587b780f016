package storage

import "github.com/armper/PandaGen-sub001/domain"

// TransactionState tracks where a Transaction sits in its lifecycle.
type TransactionState int

const (
	Active TransactionState = iota
	Committed
	RolledBack
)

func (s TransactionState) String() string {
	switch s {
	case Active:
		return "Active"
	case Committed:
		return "Committed"
	case RolledBack:
		return "RolledBack"
	default:
		return "Unknown"
	}
}

// Transaction is the staging scope for a set of writes; it transitions
// Active -> Committed or Active -> RolledBack exactly once.
type Transaction struct {
	id    domain.TransactionId
	state TransactionState
}

func NewTransaction() *Transaction {
	return &Transaction{id: domain.NewTransactionId(), state: Active}
}

func (t *Transaction) Id() domain.TransactionId    { return t.id }
func (t *Transaction) State() TransactionState     { return t.state }
func (t *Transaction) IsActive() bool              { return t.state == Active }
