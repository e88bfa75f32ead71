package leave

import "leaveflow/internal/platform/querier"

type Store struct {
	DB querier.Querier
	Tx *querier.TxManager
}

func NewStore(db querier.Querier, tx *querier.TxManager) *Store {
	return &Store{DB: db, Tx: tx}
}
