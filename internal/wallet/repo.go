package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
)

// Repository persists wallets and their transaction log. Balances only move
// through the guarded credit and debit updates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetOrCreate(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error)

	Credit(ctx context.Context, walletID uuid.UUID, amount int) error
	Debit(ctx context.Context, walletID uuid.UUID, amount int) (bool, error)

	RecordTransaction(ctx context.Context, txn *models.WalletTransaction) error
	HasReference(ctx context.Context, walletID uuid.UUID, txType enums.WalletTxType, reference string) (bool, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error) {
	wallet, err := r.FindByAccount(ctx, accountID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := &models.Wallet{ID: uuid.New(), AccountID: accountID}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		if db.IsUniqueViolation(err, "idx_wallets_account_id") {
			return r.FindByAccount(ctx, accountID)
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) Credit(ctx context.Context, walletID uuid.UUID, amount int) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// Debit is guarded against overdraft. The boolean reports whether the
// balance covered the amount.
func (r *repository) Debit(ctx context.Context, walletID uuid.UUID, amount int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", walletID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) RecordTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

// HasReference reports whether a transaction of the given type already cites
// the reference. Gateway callbacks retry, so top-ups check this first.
func (r *repository) HasReference(ctx context.Context, walletID uuid.UUID, txType enums.WalletTxType, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND type = ? AND reference = ?", walletID, txType, reference).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var txns []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
