package port

import "context"

// UnitOfWork is a pattern that allows to run transactions across different repositories.
// External calls (storage, queue, webhooks) are deliberately kept outside Execute:
// the transaction covers only the local state transition.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(uow UnitOfWork) error) error
	SessionRepo() UploadSessionRepository
	PartRepo() CompletedPartRepository
	OperationRepo() OperationRepository
	OutboxRepo() OutboxRepository
	FinalizeLogRepo() FinalizeLogRepository
	DownloadRepo() ExternalDownloadRepository
	WebhookRepo() WebhookDeliveryRepository
	AssetRepo() FileAssetRepository
}
