package sql

import "database/sql"

// GetTxFromProductRepo is a test helper to extract transaction from ProductRepository.
func GetTxFromProductRepo(repo *ProductRepository) *sql.Tx {
	return repo.txn
}

// NewProductRepositoryInTx returns a ProductRepository bound to tx.
func NewProductRepositoryInTx(db *sql.DB, tx *sql.Tx) *ProductRepository {
	return &ProductRepository{conn: conn{db: db, txn: tx}}
}

// TranslateError exposes translateError to tests.
var TranslateError = translateError
