package repository

import (
	"strings"
	"time"

	"github.com/walleyjs/threls-billing/app/models"
	"gorm.io/gorm"
)

const defaultTransactionPageSize = 10

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction record
func (r *transactionRepository) Create(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

// GetByUUID retrieves a transaction by its public identifier
func (r *transactionRepository) GetByUUID(uuid string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.Preload("User").Preload("Subscription.Plan").Where("uuid = ?", uuid).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetByUserID retrieves a page of the user's transactions, newest first
func (r *transactionRepository) GetByUserID(userID uint, offset, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Offset(offset).Limit(limit).Find(&txns).Error
	return txns, err
}

// List returns a filtered page of transactions plus the unpaged total.
// Status filters exactly; search matches invoice number or customer
// name/email case-insensitively.
func (r *transactionRepository) List(params TransactionListParams) ([]models.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = defaultTransactionPageSize
	}

	query := r.db.Model(&models.Transaction{}).
		Joins("LEFT JOIN users ON users.id = transactions.user_id")

	if params.Status != "" && params.Status != "all" {
		query = query.Where("transactions.status = ?", params.Status)
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		pattern := "%" + s + "%"
		query = query.Where(
			"transactions.invoice_number LIKE ? OR users.name LIKE ? OR users.email LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.Transaction
	err := query.Preload("User").Preload("Subscription").
		Order("transactions.created_at DESC").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&txns).Error
	return txns, total, err
}

// SumAmountByStatus totals transaction amounts in a given status
func (r *transactionRepository) SumAmountByStatus(status string) (float64, error) {
	var sum *float64
	err := r.db.Model(&models.Transaction{}).
		Where("status = ?", status).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

// NextInvoiceSequence returns the next per-day invoice sequence number
func (r *transactionRepository) NextInvoiceSequence() (int64, error) {
	start := time.Now().Truncate(24 * time.Hour)
	var count int64
	err := r.db.Model(&models.Transaction{}).Where("created_at >= ?", start).Count(&count).Error
	return count + 1, err
}
