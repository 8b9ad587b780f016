package storage

import (
	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernel"
)

// Budget is the subset of the kernel's resource accounting (C12) the
// storage service needs: one consult-and-charge call per operation.
// All three storage operations bill against the single storage_ops
// counter (spec §4.11).
type Budget interface {
	TryConsume(execution domain.ExecutionId, kind kernel.ResourceKind, amount uint64) error
}

// Service wraps JournaledStorage to consume per-operation resource
// budget before forwarding to the engine (spec §4.8's "thin
// StorageService").
type Service struct {
	engine *JournaledStorage
	budget Budget
}

func NewService(engine *JournaledStorage, budget Budget) *Service {
	return &Service{engine: engine, budget: budget}
}

func (s *Service) BeginTransaction() *Transaction {
	return s.engine.BeginTransaction()
}

func (s *Service) Read(execution domain.ExecutionId, tx *Transaction, objectId domain.ObjectId) (domain.VersionId, error) {
	if err := s.budget.TryConsume(execution, kernel.ResourceStorageOps, 1); err != nil {
		return domain.VersionId{}, err
	}
	return s.engine.Read(tx, objectId)
}

func (s *Service) Write(execution domain.ExecutionId, tx *Transaction, objectId domain.ObjectId, data []byte) (domain.VersionId, error) {
	if err := s.budget.TryConsume(execution, kernel.ResourceStorageOps, 1); err != nil {
		return domain.VersionId{}, err
	}
	return s.engine.Write(tx, objectId, data)
}

func (s *Service) Commit(execution domain.ExecutionId, tx *Transaction) error {
	if err := s.budget.TryConsume(execution, kernel.ResourceStorageOps, 1); err != nil {
		return err
	}
	return s.engine.Commit(tx)
}

func (s *Service) Rollback(tx *Transaction) error {
	return s.engine.Rollback(tx)
}

func (s *Service) Recover() error {
	return s.engine.Recover()
}

func (s *Service) Engine() *JournaledStorage {
	return s.engine
}
