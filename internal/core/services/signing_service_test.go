package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/procflow/approval_flow_app/internal/apperrors"
	"github.com/procflow/approval_flow_app/internal/core/domain"
	portssvc "github.com/procflow/approval_flow_app/internal/core/ports/services"
	"github.com/procflow/approval_flow_app/internal/core/services"
	"github.com/procflow/approval_flow_app/internal/dto"
)

// MockFlowRepository is a mock type for the FlowRepositoryWithTx interface
type MockFlowRepository struct {
	mock.Mock
}

func (m *MockFlowRepository) ListFlowsByDocument(ctx context.Context, objectSource, objectID string) ([]domain.ApprovalFlow, error) {
	args := m.Called(ctx, objectSource, objectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalFlow), args.Error(1)
}

func (m *MockFlowRepository) FindFlowByStep(ctx context.Context, objectSource, objectID, stepType string) (*domain.ApprovalFlow, error) {
	args := m.Called(ctx, objectSource, objectID, stepType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalFlow), args.Error(1)
}

func (m *MockFlowRepository) SaveFlows(ctx context.Context, flows []domain.ApprovalFlow) error {
	args := m.Called(ctx, flows)
	return args.Error(0)
}

func (m *MockFlowRepository) ListFlowsForUpdate(ctx context.Context, tx pgx.Tx, objectSource, objectID string) ([]domain.ApprovalFlow, error) {
	args := m.Called(ctx, tx, objectSource, objectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalFlow), args.Error(1)
}

func (m *MockFlowRepository) UpdateFlowInTx(ctx context.Context, tx pgx.Tx, flow domain.ApprovalFlow) error {
	args := m.Called(ctx, tx, flow)
	return args.Error(0)
}

func (m *MockFlowRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockFlowRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockFlowRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockDocumentRepository is a mock type for the DocumentRepositoryFacade interface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindDocumentByID(ctx context.Context, kind, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, kind, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindDocumentForUpdate(ctx context.Context, tx pgx.Tx, kind, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, tx, kind, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateDocumentStateInTx(ctx context.Context, tx pgx.Tx, doc domain.Document) error {
	args := m.Called(ctx, tx, doc)
	return args.Error(0)
}

// MockTemplateRepository is a mock type for the TemplateRepositoryFacade interface
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindTemplateByKind(ctx context.Context, kind string) (*domain.FlowTemplate, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlowTemplate), args.Error(1)
}

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsersByRole(ctx context.Context, roleID string) ([]domain.User, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockDocumentStateService is a mock type for the DocumentStateSvcFacade interface
type MockDocumentStateService struct {
	mock.Mock
}

func (m *MockDocumentStateService) GetDocument(ctx context.Context, docType, docID string) (*domain.Document, error) {
	args := m.Called(ctx, docType, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentStateService) StepCompleted(ctx context.Context, tx pgx.Tx, doc domain.Document, flow domain.ApprovalFlow, nextStepType string) (domain.Document, error) {
	args := m.Called(ctx, tx, doc, flow, nextStepType)
	return args.Get(0).(domain.Document), args.Error(1)
}

func (m *MockDocumentStateService) StepReopened(ctx context.Context, tx pgx.Tx, doc domain.Document, flow domain.ApprovalFlow) (domain.Document, error) {
	args := m.Called(ctx, tx, doc, flow)
	return args.Get(0).(domain.Document), args.Error(1)
}

func (m *MockDocumentStateService) DocumentCancelled(ctx context.Context, tx pgx.Tx, doc domain.Document, reason string, caller domain.Identity) (domain.Document, error) {
	args := m.Called(ctx, tx, doc, reason, caller)
	return args.Get(0).(domain.Document), args.Error(1)
}

func (m *MockDocumentStateService) DocumentReverted(ctx context.Context, tx pgx.Tx, doc domain.Document, targetStepType, reason string, caller domain.Identity) (domain.Document, error) {
	args := m.Called(ctx, tx, doc, targetStepType, reason, caller)
	return args.Get(0).(domain.Document), args.Error(1)
}

// --- Test Suite Setup ---

type SigningServiceTestSuite struct {
	suite.Suite
	mockFlowRepo     *MockFlowRepository
	mockDocumentRepo *MockDocumentRepository
	mockTemplateRepo *MockTemplateRepository
	mockUserRepo     *MockUserRepository
	mockDocState     *MockDocumentStateService
	service          portssvc.SigningSvcFacade

	docType string
	docID   string
	caller  domain.Identity
}

func (suite *SigningServiceTestSuite) SetupTest() {
	suite.mockFlowRepo = new(MockFlowRepository)
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockTemplateRepo = new(MockTemplateRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockDocState = new(MockDocumentStateService)
	suite.service = services.NewSigningService(
		suite.mockFlowRepo,
		suite.mockDocumentRepo,
		suite.mockTemplateRepo,
		suite.mockUserRepo,
		suite.mockDocState,
	)

	suite.docType = "procurement_docfunda"
	suite.docID = uuid.NewString()
	suite.caller = domain.Identity{
		UserID:   "user-ana",
		Username: "Ana Pop",
		Email:    "ana@example.ro",
	}
}

// expectTransaction wires the Begin/Rollback pair every mutation opens.
func (suite *SigningServiceTestSuite) expectTransaction() {
	suite.mockFlowRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockFlowRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (suite *SigningServiceTestSuite) document() *domain.Document {
	return &domain.Document{
		DocumentID: suite.docID,
		Kind:       suite.docType,
		Title:      "Referat de necesitate",
	}
}

// twoStepFlows returns an active step-a flow with the caller as single
// must-sign officer, and a step-b flow for a second officer.
func (suite *SigningServiceTestSuite) twoStepFlows() []domain.ApprovalFlow {
	return []domain.ApprovalFlow{
		{
			FlowID:        "flow-a",
			ObjectType:    suite.docType + "_a",
			ObjectSource:  suite.docType,
			ObjectID:      suite.docID,
			StepType:      "a",
			MinSignatures: 1,
			Officers: []domain.Officer{
				{Kind: domain.OfficerUser, UserID: suite.caller.UserID, UserName: suite.caller.Username, Obligation: domain.MustSign},
			},
			Signatures: []domain.Signature{},
			Status:     domain.FlowActive,
		},
		{
			FlowID:        "flow-b",
			ObjectType:    suite.docType + "_b",
			ObjectSource:  suite.docType,
			ObjectID:      suite.docID,
			StepType:      "b",
			MinSignatures: 1,
			Officers: []domain.Officer{
				{Kind: domain.OfficerUser, UserID: "user-bogdan", UserName: "Bogdan Ionescu", Obligation: domain.MustSign},
			},
			Signatures: []domain.Signature{},
			Status:     domain.FlowActive,
		},
	}
}

// --- CreateFlows ---

func (suite *SigningServiceTestSuite) TestCreateFlows_Success() {
	ctx := context.Background()

	template := &domain.FlowTemplate{
		Kind: suite.docType,
		Steps: []domain.TemplateStep{
			{
				StepType:      "a",
				Name:          "Verificare",
				MinSignatures: 1,
				Officers: []domain.TemplateOfficer{
					{Kind: domain.OfficerUser, UserID: "user-ana", Obligation: domain.MustSign},
				},
			},
			{
				StepType:      "b",
				Name:          "Aprobare",
				MinSignatures: 2,
				Officers: []domain.TemplateOfficer{
					{Kind: domain.OfficerRole, RoleID: "cfp", Obligation: domain.CanSign},
				},
			},
		},
	}

	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsByDocument", ctx, suite.docType, suite.docID).Return([]domain.ApprovalFlow{}, nil).Once()
	suite.mockTemplateRepo.On("FindTemplateByKind", ctx, suite.docType).Return(template, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, "user-ana").Return(&domain.User{UserID: "user-ana", Name: "Ana Pop"}, nil).Once()
	suite.mockUserRepo.On("ListUsersByRole", ctx, "cfp").Return([]domain.User{
		{UserID: "user-bogdan", Name: "Bogdan Ionescu"},
		{UserID: "user-carmen", Name: "Carmen Radu"},
	}, nil).Once()
	suite.mockFlowRepo.On("SaveFlows", ctx, mock.AnythingOfType("[]domain.ApprovalFlow")).Return(nil).Once()

	flows, created, err := suite.service.CreateFlows(ctx, suite.docType, suite.docID, suite.caller)

	suite.Require().NoError(err)
	suite.True(created)
	suite.Require().Len(flows, 2)

	suite.Equal(suite.docType+"_a", flows[0].ObjectType)
	suite.Equal("a", flows[0].StepType)
	suite.Require().Len(flows[0].Officers, 1)
	suite.Equal(domain.MustSign, flows[0].Officers[0].Obligation)
	suite.NotEmpty(flows[0].FlowID)
	suite.Equal(domain.FlowActive, flows[0].Status)
	suite.False(flows[0].IsCompleted)

	// The role reference is snapshotted into its current members.
	suite.Require().Len(flows[1].Officers, 2)
	suite.Equal("cfp", flows[1].Officers[0].RoleID)
	suite.Equal("user-bogdan", flows[1].Officers[0].UserID)

	suite.mockFlowRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *SigningServiceTestSuite) TestCreateFlows_RepeatIsNoOp() {
	ctx := context.Background()
	existing := suite.twoStepFlows()

	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsByDocument", ctx, suite.docType, suite.docID).Return(existing, nil).Once()

	flows, created, err := suite.service.CreateFlows(ctx, suite.docType, suite.docID, suite.caller)

	suite.Require().NoError(err)
	suite.False(created)
	suite.Equal(existing, flows)
	suite.mockFlowRepo.AssertNotCalled(suite.T(), "SaveFlows", mock.Anything, mock.Anything)
	suite.mockTemplateRepo.AssertNotCalled(suite.T(), "FindTemplateByKind", mock.Anything, mock.Anything)
}

func (suite *SigningServiceTestSuite) TestCreateFlows_UnknownDocument() {
	ctx := context.Background()

	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.docType, suite.docID).Return(nil, apperrors.ErrNotFound).Once()

	_, created, err := suite.service.CreateFlows(ctx, suite.docType, suite.docID, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.False(created)
}

func (suite *SigningServiceTestSuite) TestCreateFlows_ConcurrentCreateFallsBackToExisting() {
	ctx := context.Background()
	existing := suite.twoStepFlows()

	template := &domain.FlowTemplate{
		Kind: suite.docType,
		Steps: []domain.TemplateStep{
			{
				StepType:      "a",
				MinSignatures: 1,
				Officers: []domain.TemplateOfficer{
					{Kind: domain.OfficerUser, UserID: "user-ana", Obligation: domain.MustSign},
				},
			},
		},
	}

	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	// First listing sees nothing; the concurrent create lands in between.
	suite.mockFlowRepo.On("ListFlowsByDocument", ctx, suite.docType, suite.docID).Return([]domain.ApprovalFlow{}, nil).Once()
	suite.mockTemplateRepo.On("FindTemplateByKind", ctx, suite.docType).Return(template, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, "user-ana").Return(&domain.User{UserID: "user-ana", Name: "Ana Pop"}, nil).Once()
	suite.mockFlowRepo.On("SaveFlows", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	suite.mockFlowRepo.On("ListFlowsByDocument", ctx, suite.docType, suite.docID).Return(existing, nil).Once()

	flows, created, err := suite.service.CreateFlows(ctx, suite.docType, suite.docID, suite.caller)

	suite.Require().NoError(err)
	suite.False(created)
	suite.Equal(existing, flows)
}

// --- Sign ---

func (suite *SigningServiceTestSuite) TestSign_SuccessCompletesStepAndNotifiesCoordinator() {
	ctx := context.Background()
	flows := suite.twoStepFlows()

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	var savedFlow domain.ApprovalFlow
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.AnythingOfType("domain.ApprovalFlow")).Run(func(args mock.Arguments) {
		savedFlow = args.Get(2).(domain.ApprovalFlow)
	}).Return(nil).Once()
	suite.mockDocState.On("StepCompleted", ctx, nil, mock.Anything, mock.Anything, "b").Return(domain.Document{}, nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Once()

	flow, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", suite.caller, dto.SignFlowRequest{Notes: "verificat"})

	suite.Require().NoError(err)
	suite.Require().NotNil(flow)
	suite.True(flow.IsCompleted)
	suite.Equal(domain.FlowCompleted, flow.Status)
	suite.Require().NotNil(flow.CompletedAt)
	suite.Require().Len(flow.Signatures, 1)
	suite.Equal(suite.caller.UserID, flow.Signatures[0].UserID)
	suite.Equal("approval", flow.Signatures[0].SignatureType)
	suite.Len(flow.Signatures[0].SignatureHash, 64)
	suite.True(flow.FindOfficer(suite.caller.UserID).IsSigned)

	suite.Equal("flow-a", savedFlow.FlowID)
	suite.mockDocState.AssertExpectations(suite.T())
	suite.mockFlowRepo.AssertExpectations(suite.T())
}

func (suite *SigningServiceTestSuite) TestSign_BelowQuorumStaysIncomplete() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].MinSignatures = 2
	flows[0].Officers = append(flows[0].Officers, domain.Officer{
		Kind: domain.OfficerUser, UserID: "user-dana", UserName: "Dana Marin", Obligation: domain.CanSign,
	})

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Return(nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Once()

	flow, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", suite.caller, dto.SignFlowRequest{})

	suite.Require().NoError(err)
	suite.False(flow.IsCompleted)
	suite.Nil(flow.CompletedAt)
	suite.mockDocState.AssertNotCalled(suite.T(), "StepCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SigningServiceTestSuite) TestSign_NotAnOfficer() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	outsider := domain.Identity{UserID: "user-necunoscut", Username: "Intrus"}

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	_, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", outsider, dto.SignFlowRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotEligible)
	suite.mockFlowRepo.AssertNotCalled(suite.T(), "UpdateFlowInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SigningServiceTestSuite) TestSign_AlreadySigned() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].MinSignatures = 2
	flows[0].Signatures = []domain.Signature{{UserID: suite.caller.UserID}}
	flows[0].Officers[0].IsSigned = true

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	_, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", suite.caller, dto.SignFlowRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadySigned)
}

func (suite *SigningServiceTestSuite) TestSign_StepLockedWhilePriorIncomplete() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	bogdan := domain.Identity{UserID: "user-bogdan", Username: "Bogdan Ionescu"}

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	_, err := suite.service.Sign(ctx, suite.docType, suite.docID, "b", bogdan, dto.SignFlowRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStepLocked)
}

func (suite *SigningServiceTestSuite) TestSign_AdminMaySkipStepOrdering() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	admin := domain.Identity{UserID: "user-bogdan", Username: "Bogdan Ionescu", IsAdmin: true}

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Return(nil).Once()
	suite.mockDocState.On("StepCompleted", ctx, nil, mock.Anything, mock.Anything, "a").Return(domain.Document{}, nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Once()

	flow, err := suite.service.Sign(ctx, suite.docType, suite.docID, "b", admin, dto.SignFlowRequest{SkipStepCheck: true})

	suite.Require().NoError(err)
	suite.True(flow.IsCompleted)
}

func (suite *SigningServiceTestSuite) TestSign_SkipRequiresAdmin() {
	ctx := context.Background()

	_, err := suite.service.Sign(ctx, suite.docType, suite.docID, "b", suite.caller, dto.SignFlowRequest{SkipStepCheck: true})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockFlowRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *SigningServiceTestSuite) TestSign_SubstituteMustConfirm() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].Officers = append(flows[0].Officers, domain.Officer{
		Kind:          domain.OfficerUser,
		UserID:        "user-elena",
		UserName:      "Elena Vasile",
		Obligation:    domain.CanSign,
		SubstituteFor: suite.caller.UserID,
	})
	elena := domain.Identity{UserID: "user-elena", Username: "Elena Vasile"}

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	_, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", elena, dto.SignFlowRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSubstitutionNotConfirmed)
}

func (suite *SigningServiceTestSuite) TestSign_SubstituteSignatureSatisfiesQuorum() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].Officers = append(flows[0].Officers, domain.Officer{
		Kind:          domain.OfficerUser,
		UserID:        "user-elena",
		UserName:      "Elena Vasile",
		Obligation:    domain.CanSign,
		SubstituteFor: suite.caller.UserID,
	})
	elena := domain.Identity{UserID: "user-elena", Username: "Elena Vasile"}

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Return(nil).Once()
	suite.mockDocState.On("StepCompleted", ctx, nil, mock.Anything, mock.Anything, "b").Return(domain.Document{}, nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Once()

	flow, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", elena, dto.SignFlowRequest{SubstituteConfirmed: true})

	// The must-sign officer did not sign personally, but the substitute did.
	suite.Require().NoError(err)
	suite.True(flow.IsCompleted)
}

func (suite *SigningServiceTestSuite) TestSign_CompletedFlowRejectsSignatures() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].IsCompleted = true
	flows[0].Status = domain.FlowCompleted

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	_, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", suite.caller, dto.SignFlowRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *SigningServiceTestSuite) TestSign_CancelledFlowRejectsSignatures() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].Status = domain.FlowCancelled

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	_, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", suite.caller, dto.SignFlowRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *SigningServiceTestSuite) TestSign_SubStepOrderEnforced() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].MinSignatures = 2
	flows[0].Officers = append(flows[0].Officers, domain.Officer{
		Kind: domain.OfficerUser, UserID: "user-dana", UserName: "Dana Marin", Obligation: domain.CanSign,
	})
	flows[0].Steps = []domain.FlowSubStep{
		{Order: 1, Name: "Verificare internă", MinSignatures: 1, Officers: []domain.Officer{
			{Kind: domain.OfficerUser, UserID: suite.caller.UserID, UserName: suite.caller.Username, Obligation: domain.MustSign},
		}},
		{Order: 2, Name: "Avizare", MinSignatures: 1, Officers: []domain.Officer{
			{Kind: domain.OfficerUser, UserID: "user-dana", UserName: "Dana Marin", Obligation: domain.CanSign},
		}},
	}
	dana := domain.Identity{UserID: "user-dana", Username: "Dana Marin"}

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	// Dana only belongs to the second sub-step; the first has no signatures yet.
	_, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", dana, dto.SignFlowRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStepLocked)
	suite.mockFlowRepo.AssertNotCalled(suite.T(), "UpdateFlowInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SigningServiceTestSuite) TestSign_SubStepsCompleteSequentially() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].MinSignatures = 2
	flows[0].Officers = append(flows[0].Officers, domain.Officer{
		Kind: domain.OfficerUser, UserID: "user-dana", UserName: "Dana Marin", Obligation: domain.CanSign,
	})
	flows[0].Steps = []domain.FlowSubStep{
		{Order: 1, Name: "Verificare internă", MinSignatures: 1, Officers: []domain.Officer{
			{Kind: domain.OfficerUser, UserID: suite.caller.UserID, UserName: suite.caller.Username, Obligation: domain.MustSign},
		}},
		{Order: 2, Name: "Avizare", MinSignatures: 1, Officers: []domain.Officer{
			{Kind: domain.OfficerUser, UserID: "user-dana", UserName: "Dana Marin", Obligation: domain.CanSign},
		}},
	}
	dana := domain.Identity{UserID: "user-dana", Username: "Dana Marin"}

	suite.expectTransaction()
	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Twice()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Twice()
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Return(nil).Twice()
	suite.mockDocState.On("StepCompleted", ctx, nil, mock.Anything, mock.Anything, "b").Return(domain.Document{}, nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Twice()

	first, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", suite.caller, dto.SignFlowRequest{})
	suite.Require().NoError(err)
	suite.False(first.IsCompleted)
	suite.True(first.Steps[0].FindOfficer(suite.caller.UserID).IsSigned)

	second, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", dana, dto.SignFlowRequest{})
	suite.Require().NoError(err)
	suite.True(second.IsCompleted)
	suite.True(second.Steps[1].FindOfficer("user-dana").IsSigned)
	suite.mockDocState.AssertExpectations(suite.T())
}

func (suite *SigningServiceTestSuite) TestSign_ResumesSupersededFlow() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].Status = domain.FlowSuperseded
	flows[0].MinSignatures = 2
	flows[0].Officers = append(flows[0].Officers, domain.Officer{
		Kind: domain.OfficerUser, UserID: "user-dana", UserName: "Dana Marin", Obligation: domain.CanSign,
	})

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Return(nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Once()

	flow, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", suite.caller, dto.SignFlowRequest{})

	// Signing a step a revert had reset puts it back in progress.
	suite.Require().NoError(err)
	suite.False(flow.IsCompleted)
	suite.Equal(domain.FlowActive, flow.Status)
}

func (suite *SigningServiceTestSuite) TestCreateFlows_SnapshotsSubstituteFromTemplate() {
	ctx := context.Background()

	template := &domain.FlowTemplate{
		Kind: suite.docType,
		Steps: []domain.TemplateStep{
			{
				StepType:      "a",
				Name:          "Verificare",
				MinSignatures: 1,
				Officers: []domain.TemplateOfficer{
					{Kind: domain.OfficerUser, UserID: "user-ana", Obligation: domain.MustSign},
					{Kind: domain.OfficerUser, UserID: "user-elena", Obligation: domain.CanSign, SubstituteFor: "user-ana"},
				},
			},
		},
	}

	suite.mockDocumentRepo.On("FindDocumentByID", ctx, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsByDocument", ctx, suite.docType, suite.docID).Return([]domain.ApprovalFlow{}, nil).Once()
	suite.mockTemplateRepo.On("FindTemplateByKind", ctx, suite.docType).Return(template, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, "user-ana").Return(&domain.User{UserID: "user-ana", Name: "Ana Pop"}, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, "user-elena").Return(&domain.User{UserID: "user-elena", Name: "Elena Vasile"}, nil).Once()
	suite.mockFlowRepo.On("SaveFlows", ctx, mock.Anything).Return(nil).Once()

	flows, created, err := suite.service.CreateFlows(ctx, suite.docType, suite.docID, suite.caller)

	suite.Require().NoError(err)
	suite.True(created)
	suite.Require().Len(flows, 1)
	suite.Require().Len(flows[0].Officers, 2)
	suite.Equal("user-ana", flows[0].Officers[1].SubstituteFor)

	// The snapshotted substitute drives the signing path: unconfirmed signing
	// is rejected, confirmed signing satisfies the principal's obligation.
	elena := domain.Identity{UserID: "user-elena", Username: "Elena Vasile"}

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	_, err = suite.service.Sign(ctx, suite.docType, suite.docID, "a", elena, dto.SignFlowRequest{})
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSubstitutionNotConfirmed)

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Return(nil).Once()
	suite.mockDocState.On("StepCompleted", ctx, nil, mock.Anything, mock.Anything, "").Return(domain.Document{}, nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Once()

	flow, err := suite.service.Sign(ctx, suite.docType, suite.docID, "a", elena, dto.SignFlowRequest{SubstituteConfirmed: true})
	suite.Require().NoError(err)
	suite.True(flow.IsCompleted)
}

// --- CancelDocument ---

func (suite *SigningServiceTestSuite) TestCancelDocument_ReasonRequired() {
	ctx := context.Background()

	err := suite.service.CancelDocument(ctx, suite.docType, suite.docID, "  ", suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockFlowRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *SigningServiceTestSuite) TestCancelDocument_CancelsInProgressOnly() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].IsCompleted = true
	flows[0].Status = domain.FlowCompleted

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	var cancelled []domain.ApprovalFlow
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Run(func(args mock.Arguments) {
		cancelled = append(cancelled, args.Get(2).(domain.ApprovalFlow))
	}).Return(nil).Once()
	suite.mockDocState.On("DocumentCancelled", ctx, nil, mock.Anything, "buget retras", suite.caller).Return(domain.Document{}, nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Once()

	err := suite.service.CancelDocument(ctx, suite.docType, suite.docID, "buget retras", suite.caller)

	suite.Require().NoError(err)
	// Only the in-progress step-b flow is touched; the completed step-a flow
	// stays historically intact.
	suite.Require().Len(cancelled, 1)
	suite.Equal("flow-b", cancelled[0].FlowID)
	suite.Equal(domain.FlowCancelled, cancelled[0].Status)
	suite.mockDocState.AssertExpectations(suite.T())
}

func (suite *SigningServiceTestSuite) TestCancelDocument_RepeatIsNoOp() {
	ctx := context.Background()
	doc := suite.document()
	cancelledAt := doc.CreatedAt
	doc.CancelledAt = &cancelledAt

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(doc, nil).Once()

	err := suite.service.CancelDocument(ctx, suite.docType, suite.docID, "din nou", suite.caller)

	suite.Require().NoError(err)
	suite.mockFlowRepo.AssertNotCalled(suite.T(), "ListFlowsForUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockDocState.AssertNotCalled(suite.T(), "DocumentCancelled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- RevertToStep ---

func (suite *SigningServiceTestSuite) TestRevertToStep_ResetsLaterFlowsKeepingSignatures() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].IsCompleted = true
	flows[0].Status = domain.FlowCompleted
	flows[1].IsCompleted = true
	flows[1].Status = domain.FlowCompleted
	flows[1].Signatures = []domain.Signature{{UserID: "user-bogdan", Username: "Bogdan Ionescu"}}

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	var reset []domain.ApprovalFlow
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Run(func(args mock.Arguments) {
		reset = append(reset, args.Get(2).(domain.ApprovalFlow))
	}).Return(nil).Once()
	suite.mockDocState.On("DocumentReverted", ctx, nil, mock.Anything, "a", "semnătură contestată", suite.caller).Return(domain.Document{}, nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Once()

	err := suite.service.RevertToStep(ctx, suite.docType, suite.docID, "a", "semnătură contestată", suite.caller)

	suite.Require().NoError(err)
	// Only the step-b flow (strictly after the target) is reset, and its
	// signatures survive for the audit trail.
	suite.Require().Len(reset, 1)
	suite.Equal("flow-b", reset[0].FlowID)
	suite.False(reset[0].IsCompleted)
	suite.Equal(domain.FlowSuperseded, reset[0].Status)
	suite.Nil(reset[0].CompletedAt)
	suite.Len(reset[0].Signatures, 1)
	suite.mockFlowRepo.AssertNumberOfCalls(suite.T(), "Commit", 1)
}

func (suite *SigningServiceTestSuite) TestRevertToStep_TargetAheadOfProgress() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].IsCompleted = true
	flows[0].Status = domain.FlowCompleted

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	err := suite.service.RevertToStep(ctx, suite.docType, suite.docID, "b", "greșit", suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTarget)
	suite.mockFlowRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *SigningServiceTestSuite) TestRevertToStep_UpdateFailureAbortsWithoutCommit() {
	ctx := context.Background()
	flows := suite.twoStepFlows()
	flows[0].IsCompleted = true
	flows[0].Status = domain.FlowCompleted
	flows[1].IsCompleted = true
	flows[1].Status = domain.FlowCompleted

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Return(apperrors.ErrInternal).Once()

	err := suite.service.RevertToStep(ctx, suite.docType, suite.docID, "a", "motiv", suite.caller)

	suite.Require().Error(err)
	suite.mockFlowRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockFlowRepo.AssertCalled(suite.T(), "Rollback", mock.Anything, nil)
}

// --- RemoveSignature ---

func (suite *SigningServiceTestSuite) TestRemoveSignature_RequiresAdmin() {
	ctx := context.Background()

	_, err := suite.service.RemoveSignature(ctx, suite.docType, suite.docID, "a", "user-ana", suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockFlowRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *SigningServiceTestSuite) TestRemoveSignature_ReopensCompletedFlow() {
	ctx := context.Background()
	admin := domain.Identity{UserID: "user-admin", Username: "Admin", IsAdmin: true}
	flows := suite.twoStepFlows()
	completedAt := flows[0].CreatedAt
	flows[0].IsCompleted = true
	flows[0].Status = domain.FlowCompleted
	flows[0].CompletedAt = &completedAt
	flows[0].Signatures = []domain.Signature{{UserID: suite.caller.UserID, Username: suite.caller.Username}}
	flows[0].Officers[0].IsSigned = true

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()
	suite.mockFlowRepo.On("UpdateFlowInTx", ctx, nil, mock.Anything).Return(nil).Once()
	suite.mockDocState.On("StepReopened", ctx, nil, mock.Anything, mock.Anything).Return(domain.Document{}, nil).Once()
	suite.mockFlowRepo.On("Commit", ctx, nil).Return(nil).Once()

	flow, err := suite.service.RemoveSignature(ctx, suite.docType, suite.docID, "a", suite.caller.UserID, admin)

	suite.Require().NoError(err)
	suite.False(flow.IsCompleted)
	suite.Equal(domain.FlowActive, flow.Status)
	suite.Nil(flow.CompletedAt)
	suite.Empty(flow.Signatures)
	suite.False(flow.FindOfficer(suite.caller.UserID).IsSigned)
	suite.mockDocState.AssertExpectations(suite.T())
}

func (suite *SigningServiceTestSuite) TestRemoveSignature_UnknownSignature() {
	ctx := context.Background()
	admin := domain.Identity{UserID: "user-admin", IsAdmin: true}
	flows := suite.twoStepFlows()

	suite.expectTransaction()
	suite.mockDocumentRepo.On("FindDocumentForUpdate", ctx, nil, suite.docType, suite.docID).Return(suite.document(), nil).Once()
	suite.mockFlowRepo.On("ListFlowsForUpdate", ctx, nil, suite.docType, suite.docID).Return(flows, nil).Once()

	_, err := suite.service.RemoveSignature(ctx, suite.docType, suite.docID, "a", "user-fara-semnatura", admin)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestSigningServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SigningServiceTestSuite))
}
