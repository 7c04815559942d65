package postgres

import (
	"context"
	"database/sql"

	"fileflow/internal/core/port"
)

type sqlUnitOfWork struct {
	db *sql.DB
	tx *sql.Tx
}

// NewUnitOfWork creates a unit of work over the given database
func NewUnitOfWork(db *sql.DB) port.UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) querier() SQLQuerier {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *sqlUnitOfWork) SessionRepo() port.UploadSessionRepository {
	return NewSQLUploadSessionRepository(u.querier())
}

func (u *sqlUnitOfWork) PartRepo() port.CompletedPartRepository {
	return NewSQLCompletedPartRepository(u.querier())
}

func (u *sqlUnitOfWork) OperationRepo() port.OperationRepository {
	return NewSQLOperationRepository(u.querier())
}

func (u *sqlUnitOfWork) OutboxRepo() port.OutboxRepository {
	return NewSQLOutboxRepository(u.querier())
}

func (u *sqlUnitOfWork) FinalizeLogRepo() port.FinalizeLogRepository {
	return NewSQLFinalizeLogRepository(u.querier())
}

func (u *sqlUnitOfWork) DownloadRepo() port.ExternalDownloadRepository {
	return NewSQLExternalDownloadRepository(u.querier())
}

func (u *sqlUnitOfWork) WebhookRepo() port.WebhookDeliveryRepository {
	return NewSQLWebhookDeliveryRepository(u.querier())
}

func (u *sqlUnitOfWork) AssetRepo() port.FileAssetRepository {
	return NewSQLFileAssetRepository(u.querier())
}

func (u *sqlUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	uowWithTx := &sqlUnitOfWork{db: u.db, tx: tx}

	if err := fn(uowWithTx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
