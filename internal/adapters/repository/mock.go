package repository

import (
	"context"
	"time"

	"fileflow/internal/core/domain"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUploadSessionRepository struct {
	mock.Mock
}

func NewMockUploadSessionRepository() *MockUploadSessionRepository {
	return &MockUploadSessionRepository{}
}

func (m *MockUploadSessionRepository) Create(ctx context.Context, session domain.UploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.UploadSession, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockUploadSessionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.UploadSession, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockUploadSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.UploadSession, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]domain.UploadSession), args.Error(1)
}

type MockCompletedPartRepository struct {
	mock.Mock
}

func NewMockCompletedPartRepository() *MockCompletedPartRepository {
	return &MockCompletedPartRepository{}
}

func (m *MockCompletedPartRepository) Add(ctx context.Context, part domain.CompletedPart) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockCompletedPartRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CompletedPart, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.CompletedPart), args.Error(1)
}

func (m *MockCompletedPartRepository) FindByNumber(ctx context.Context, sessionID uuid.UUID, partNumber int) (*domain.CompletedPart, error) {
	args := m.Called(ctx, sessionID, partNumber)
	return args.Get(0).(*domain.CompletedPart), args.Error(1)
}

type MockOperationRepository struct {
	mock.Mock
}

func NewMockOperationRepository() *MockOperationRepository {
	return &MockOperationRepository{}
}

func (m *MockOperationRepository) Insert(ctx context.Context, op domain.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockOperationRepository) FindByIdemKey(ctx context.Context, idemKey string) (*domain.Operation, error) {
	args := m.Called(ctx, idemKey)
	return args.Get(0).(*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Operation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) Update(ctx context.Context, op domain.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

type MockOutboxRepository struct {
	mock.Mock
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Insert(ctx context.Context, msg domain.OutboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) FindByAggregate(ctx context.Context, aggregateID string) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, aggregateID)
	return args.Get(0).([]domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) ClaimPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) ClaimRetryable(ctx context.Context, maxRetries int, failedBefore time.Time, limit int) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, maxRetries, failedBefore, limit)
	return args.Get(0).([]domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) ClaimStale(ctx context.Context, staleBefore time.Time, limit int) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, staleBefore, limit)
	return args.Get(0).([]domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) RequeueStale(ctx context.Context, staleBefore time.Time, limit int) (int, error) {
	args := m.Called(ctx, staleBefore, limit)
	return args.Int(0), args.Error(1)
}

type MockFinalizeLogRepository struct {
	mock.Mock
}

func NewMockFinalizeLogRepository() *MockFinalizeLogRepository {
	return &MockFinalizeLogRepository{}
}

func (m *MockFinalizeLogRepository) Insert(ctx context.Context, entry domain.FinalizeLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockFinalizeLogRepository) FindByIdemKey(ctx context.Context, idemKey string) (*domain.FinalizeLog, error) {
	args := m.Called(ctx, idemKey)
	return args.Get(0).(*domain.FinalizeLog), args.Error(1)
}

func (m *MockFinalizeLogRepository) Complete(ctx context.Context, id uuid.UUID, outcomeType, outcomeMessage string) error {
	args := m.Called(ctx, id, outcomeType, outcomeMessage)
	return args.Error(0)
}

func (m *MockFinalizeLogRepository) Reopen(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFinalizeLogRepository) FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.FinalizeLog, error) {
	args := m.Called(ctx, createdBefore, limit)
	return args.Get(0).([]domain.FinalizeLog), args.Error(1)
}

type MockExternalDownloadRepository struct {
	mock.Mock
}

func NewMockExternalDownloadRepository() *MockExternalDownloadRepository {
	return &MockExternalDownloadRepository{}
}

func (m *MockExternalDownloadRepository) Insert(ctx context.Context, dl domain.ExternalDownload) error {
	args := m.Called(ctx, dl)
	return args.Error(0)
}

func (m *MockExternalDownloadRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ExternalDownload, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.ExternalDownload), args.Error(1)
}

func (m *MockExternalDownloadRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.ExternalDownload, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(*domain.ExternalDownload), args.Error(1)
}

func (m *MockExternalDownloadRepository) Update(ctx context.Context, dl domain.ExternalDownload) error {
	args := m.Called(ctx, dl)
	return args.Error(0)
}

func (m *MockExternalDownloadRepository) FindStuck(ctx context.Context, staleBefore time.Time, limit int) ([]domain.ExternalDownload, error) {
	args := m.Called(ctx, staleBefore, limit)
	return args.Get(0).([]domain.ExternalDownload), args.Error(1)
}

type MockWebhookDeliveryRepository struct {
	mock.Mock
}

func NewMockWebhookDeliveryRepository() *MockWebhookDeliveryRepository {
	return &MockWebhookDeliveryRepository{}
}

func (m *MockWebhookDeliveryRepository) Insert(ctx context.Context, delivery domain.WebhookDelivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockWebhookDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.WebhookDelivery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.WebhookDelivery), args.Error(1)
}

func (m *MockWebhookDeliveryRepository) ClaimPending(ctx context.Context, limit int) ([]domain.WebhookDelivery, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.WebhookDelivery), args.Error(1)
}

func (m *MockWebhookDeliveryRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWebhookDeliveryRepository) MarkRetry(ctx context.Context, id uuid.UUID, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

func (m *MockWebhookDeliveryRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

func (m *MockWebhookDeliveryRepository) RequeueStale(ctx context.Context, staleBefore time.Time, limit int) (int, error) {
	args := m.Called(ctx, staleBefore, limit)
	return args.Int(0), args.Error(1)
}

type MockFileAssetRepository struct {
	mock.Mock
}

func NewMockFileAssetRepository() *MockFileAssetRepository {
	return &MockFileAssetRepository{}
}

func (m *MockFileAssetRepository) Insert(ctx context.Context, asset domain.FileAsset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockFileAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.FileAsset, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.FileAsset), args.Error(1)
}

func (m *MockFileAssetRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) (*domain.FileAsset, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(*domain.FileAsset), args.Error(1)
}

type MockUnitOfWork struct {
	mock.Mock
	sessionRepo  *MockUploadSessionRepository
	partRepo     *MockCompletedPartRepository
	opRepo       *MockOperationRepository
	outboxRepo   *MockOutboxRepository
	finalizeRepo *MockFinalizeLogRepository
	downloadRepo *MockExternalDownloadRepository
	webhookRepo  *MockWebhookDeliveryRepository
	assetRepo    *MockFileAssetRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		sessionRepo:  &MockUploadSessionRepository{},
		partRepo:     &MockCompletedPartRepository{},
		opRepo:       &MockOperationRepository{},
		outboxRepo:   &MockOutboxRepository{},
		finalizeRepo: &MockFinalizeLogRepository{},
		downloadRepo: &MockExternalDownloadRepository{},
		webhookRepo:  &MockWebhookDeliveryRepository{},
		assetRepo:    &MockFileAssetRepository{},
	}
}

func (m *MockUnitOfWork) SessionRepo() port.UploadSessionRepository {
	return m.sessionRepo
}

func (m *MockUnitOfWork) PartRepo() port.CompletedPartRepository {
	return m.partRepo
}

func (m *MockUnitOfWork) OperationRepo() port.OperationRepository {
	return m.opRepo
}

func (m *MockUnitOfWork) OutboxRepo() port.OutboxRepository {
	return m.outboxRepo
}

func (m *MockUnitOfWork) FinalizeLogRepo() port.FinalizeLogRepository {
	return m.finalizeRepo
}

func (m *MockUnitOfWork) DownloadRepo() port.ExternalDownloadRepository {
	return m.downloadRepo
}

func (m *MockUnitOfWork) WebhookRepo() port.WebhookDeliveryRepository {
	return m.webhookRepo
}

func (m *MockUnitOfWork) AssetRepo() port.FileAssetRepository {
	return m.assetRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetSessionRepoMock() *MockUploadSessionRepository {
	return m.sessionRepo
}

func (m *MockUnitOfWork) GetPartRepoMock() *MockCompletedPartRepository {
	return m.partRepo
}

func (m *MockUnitOfWork) GetOperationRepoMock() *MockOperationRepository {
	return m.opRepo
}

func (m *MockUnitOfWork) GetOutboxRepoMock() *MockOutboxRepository {
	return m.outboxRepo
}

func (m *MockUnitOfWork) GetFinalizeLogRepoMock() *MockFinalizeLogRepository {
	return m.finalizeRepo
}

func (m *MockUnitOfWork) GetDownloadRepoMock() *MockExternalDownloadRepository {
	return m.downloadRepo
}

func (m *MockUnitOfWork) GetWebhookRepoMock() *MockWebhookDeliveryRepository {
	return m.webhookRepo
}

func (m *MockUnitOfWork) GetAssetRepoMock() *MockFileAssetRepository {
	return m.assetRepo
}
