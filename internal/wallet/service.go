package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

// ErrInsufficientBalance reports a debit larger than the wallet holds. The
// wallet is left untouched when this fires.
var ErrInsufficientBalance = errors.New("wallet balance does not cover the amount")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TransactionDTO is one wallet ledger entry.
type TransactionDTO struct {
	ID        uuid.UUID          `json:"id"`
	Type      enums.WalletTxType `json:"type"`
	Amount    int                `json:"amount"`
	Reference string             `json:"reference"`
	CreatedAt time.Time          `json:"created_at"`
}

// WalletDTO is the balance plus recent ledger entries.
type WalletDTO struct {
	Balance      int              `json:"balance"`
	Transactions []TransactionDTO `json:"transactions"`
}

// Payer is the settlement surface other domains rebind into their own
// transactions, so a debit or refund commits with the order rows it pays
// for. The unbound service opens its own transaction per call.
type Payer interface {
	WithTx(tx *gorm.DB) Payer
	Credit(ctx context.Context, accountID uuid.UUID, amount int, txType enums.WalletTxType, reference string) error
	Debit(ctx context.Context, accountID uuid.UUID, amount int, reference string) error
	TopUp(ctx context.Context, accountID uuid.UUID, amount int, paymentID string) error
}

// Service manages customer wallet balances. Every balance move writes a
// ledger row inside the same transaction.
type Service interface {
	Get(ctx context.Context, accountID uuid.UUID) (*WalletDTO, error)
	Payer
}

// ServiceParams bundles the dependencies required to build a wallet service.
type ServiceParams struct {
	Repo Repository
	Tx   txRunner
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService constructs a wallet service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wallet repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

// boundRunner pins every balance move to an already-open transaction.
type boundRunner struct {
	tx *gorm.DB
}

func (b boundRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(b.tx)
}

func (s *service) WithTx(tx *gorm.DB) Payer {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), tx: boundRunner{tx: tx}}
}

func (s *service) Get(ctx context.Context, accountID uuid.UUID) (*WalletDTO, error) {
	wallet, err := s.repo.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wallet")
	}
	txns, err := s.repo.ListTransactions(ctx, wallet.ID, 50)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list wallet transactions")
	}
	dto := &WalletDTO{Balance: wallet.Balance, Transactions: make([]TransactionDTO, 0, len(txns))}
	for _, txn := range txns {
		dto.Transactions = append(dto.Transactions, TransactionDTO{
			ID:        txn.ID,
			Type:      txn.Type,
			Amount:    txn.Amount,
			Reference: txn.Reference,
			CreatedAt: txn.CreatedAt,
		})
	}
	return dto, nil
}

func (s *service) Credit(ctx context.Context, accountID uuid.UUID, amount int, txType enums.WalletTxType, reference string) error {
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be greater than zero")
	}
	wallet, err := s.repo.GetOrCreate(ctx, accountID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wallet")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Credit(ctx, wallet.ID, amount); err != nil {
			return err
		}
		return repo.RecordTransaction(ctx, &models.WalletTransaction{
			WalletID:  wallet.ID,
			Type:      txType,
			Amount:    amount,
			Reference: reference,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to credit wallet")
	}
	return nil
}

func (s *service) Debit(ctx context.Context, accountID uuid.UUID, amount int, reference string) error {
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be greater than zero")
	}
	wallet, err := s.repo.GetOrCreate(ctx, accountID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wallet")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.Debit(ctx, wallet.ID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientBalance
		}
		return repo.RecordTransaction(ctx, &models.WalletTransaction{
			WalletID:  wallet.ID,
			Type:      enums.WalletTxTypeDebit,
			Amount:    amount,
			Reference: reference,
		})
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrInsufficientBalance, ErrInsufficientBalance.Error())
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to debit wallet")
	}
	return nil
}

// TopUp credits a verified gateway payment. Replayed callbacks citing the
// same payment id are acknowledged without crediting twice.
func (s *service) TopUp(ctx context.Context, accountID uuid.UUID, amount int, paymentID string) error {
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "top-up amount must be greater than zero")
	}
	if paymentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	wallet, err := s.repo.GetOrCreate(ctx, accountID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load wallet")
	}
	seen, err := s.repo.HasReference(ctx, wallet.ID, enums.WalletTxTypeTopup, paymentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to check payment reference")
	}
	if seen {
		return nil
	}
	return s.Credit(ctx, accountID, amount, enums.WalletTxTypeTopup, paymentID)
}
