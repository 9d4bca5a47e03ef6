package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/usecase"
	"github.com/hackclub/hermes/internal/usecase/gatewaymocks"
	"github.com/hackclub/hermes/internal/usecase/mocks"
)

func seededDisbursementRepo() *mocks.MockDisbursementRepository {
	repo := mocks.NewMockDisbursementRepository()
	transferID := "tx_42"
	repo.Seed(&domain.Disbursement{
		ID:             "disb_1",
		IdempotencyKey: "key-abc123",
		OrganizationID: "org_acme",
		AmountCents:    1500,
		ItemCount:      3,
		Status:         domain.DisbursementStatusCompleted,
		TransferID:     &transferID,
		CreatedAt:      time.Now().UTC().Add(-time.Hour),
	})
	return repo
}

func TestDisbursementUseCase_VerifyDisbursement(t *testing.T) {
	ctx := context.Background()

	t.Run("finds the matching transfer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		orgRepo := mocks.NewMockOrganizationRepository()
		slug := "acme"
		orgRepo.Seed(&domain.Organization{ID: "org_acme", Name: "Acme Robotics", AccountSlug: &slug})

		gateway := gatewaymocks.NewMockPaymentGateway(ctrl)
		gateway.EXPECT().
			ListTransfers(gomock.Any(), "acme", usecase.TransferLookupLimit).
			Return([]*domain.TransferRecord{
				{TransferID: "tx_41", Memo: "Hermes Fulfillment // 2 items // key-other", AmountCents: 1500},
				{TransferID: "tx_42", Memo: "Hermes Fulfillment // 3 items // key-abc123", AmountCents: 1500},
			}, nil)

		uc := usecase.NewDisbursementUseCase(seededDisbursementRepo(), orgRepo, gateway)

		result, err := uc.VerifyDisbursement(ctx, "disb_1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Matched {
			t.Fatalf("expected a match")
		}
		if result.Transfer == nil || result.Transfer.TransferID != "tx_42" {
			t.Errorf("expected transfer tx_42, got %+v", result.Transfer)
		}
		if result.CheckedAt.IsZero() {
			t.Errorf("expected the check timestamp to be set")
		}
	})

	t.Run("same key but different amount is not a match", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		orgRepo := mocks.NewMockOrganizationRepository()
		slug := "acme"
		orgRepo.Seed(&domain.Organization{ID: "org_acme", Name: "Acme Robotics", AccountSlug: &slug})

		gateway := gatewaymocks.NewMockPaymentGateway(ctrl)
		gateway.EXPECT().
			ListTransfers(gomock.Any(), "acme", usecase.TransferLookupLimit).
			Return([]*domain.TransferRecord{
				{TransferID: "tx_42", Memo: "Hermes Fulfillment // 3 items // key-abc123", AmountCents: 1400},
			}, nil)

		uc := usecase.NewDisbursementUseCase(seededDisbursementRepo(), orgRepo, gateway)

		result, err := uc.VerifyDisbursement(ctx, "disb_1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Matched {
			t.Errorf("an amount mismatch must not count as a match")
		}
		if result.Transfer != nil {
			t.Errorf("expected no transfer, got %+v", result.Transfer)
		}
	})

	t.Run("requires an account slug", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		orgRepo := mocks.NewMockOrganizationRepository()
		orgRepo.Seed(&domain.Organization{ID: "org_acme", Name: "Acme Robotics"})

		uc := usecase.NewDisbursementUseCase(seededDisbursementRepo(), orgRepo, gatewaymocks.NewMockPaymentGateway(ctrl))

		if _, err := uc.VerifyDisbursement(ctx, "disb_1"); !errors.Is(err, domain.ErrMissingAccountSlug) {
			t.Fatalf("expected %v, got %v", domain.ErrMissingAccountSlug, err)
		}
	})

	t.Run("propagates gateway errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		orgRepo := mocks.NewMockOrganizationRepository()
		slug := "acme"
		orgRepo.Seed(&domain.Organization{ID: "org_acme", Name: "Acme Robotics", AccountSlug: &slug})

		gatewayErr := &domain.GatewayError{Message: "internal error", StatusCode: 500}
		gateway := gatewaymocks.NewMockPaymentGateway(ctrl)
		gateway.EXPECT().
			ListTransfers(gomock.Any(), "acme", usecase.TransferLookupLimit).
			Return(nil, gatewayErr)

		uc := usecase.NewDisbursementUseCase(seededDisbursementRepo(), orgRepo, gateway)

		_, err := uc.VerifyDisbursement(ctx, "disb_1")
		if !errors.Is(err, gatewayErr) {
			t.Fatalf("expected the gateway error, got %v", err)
		}
	})

	t.Run("unknown disbursement", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uc := usecase.NewDisbursementUseCase(
			mocks.NewMockDisbursementRepository(),
			mocks.NewMockOrganizationRepository(),
			gatewaymocks.NewMockPaymentGateway(ctrl),
		)

		if _, err := uc.VerifyDisbursement(ctx, "disb_missing"); !errors.Is(err, domain.ErrDisbursementNotFound) {
			t.Fatalf("expected %v, got %v", domain.ErrDisbursementNotFound, err)
		}
	})
}

func TestDisbursementUseCase_ListDisbursements(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an unknown status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		uc := usecase.NewDisbursementUseCase(
			mocks.NewMockDisbursementRepository(),
			mocks.NewMockOrganizationRepository(),
			gatewaymocks.NewMockPaymentGateway(ctrl),
		)

		if _, err := uc.ListDisbursements(ctx, usecase.ListDisbursementsInput{Status: "settled"}); err == nil {
			t.Fatalf("expected an error for an unknown status")
		}
	})

	t.Run("lists pending oldest first", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := mocks.NewMockDisbursementRepository()
		older := time.Now().UTC().Add(-2 * time.Hour)
		newer := time.Now().UTC().Add(-time.Hour)
		repo.Seed(
			&domain.Disbursement{ID: "disb_new", IdempotencyKey: "key-2", OrganizationID: "org_b", Status: domain.DisbursementStatusPending, CreatedAt: newer},
			&domain.Disbursement{ID: "disb_old", IdempotencyKey: "key-1", OrganizationID: "org_a", Status: domain.DisbursementStatusPending, CreatedAt: older},
			&domain.Disbursement{ID: "disb_done", IdempotencyKey: "key-3", OrganizationID: "org_c", Status: domain.DisbursementStatusCompleted, CreatedAt: older},
		)

		uc := usecase.NewDisbursementUseCase(repo, mocks.NewMockOrganizationRepository(), gatewaymocks.NewMockPaymentGateway(ctrl))

		disbs, err := uc.ListDisbursements(ctx, usecase.ListDisbursementsInput{Status: domain.DisbursementStatusPending})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(disbs) != 2 {
			t.Fatalf("expected 2 pending disbursements, got %d", len(disbs))
		}
		if disbs[0].ID != "disb_old" || disbs[1].ID != "disb_new" {
			t.Errorf("expected oldest first, got %s then %s", disbs[0].ID, disbs[1].ID)
		}
	})
}
